package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flock/internal/core"
)

// RoutingKeyRecordChanged is the routing key for record-changed events.
const RoutingKeyRecordChanged = "record.changed"

// RecordChangedMessage tells every replica that an organization's records
// in one domain changed and its dashboard caches are stale.
type RecordChangedMessage struct {
	OrgID     uuid.UUID   `json:"org_id"`
	Domain    core.Domain `json:"domain"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRecordChangedMessage(orgID uuid.UUID, domain core.Domain) *RecordChangedMessage {
	return &RecordChangedMessage{
		OrgID:     orgID,
		Domain:    domain,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a message and rejects one without an
// organization.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.OrgID == uuid.Nil {
		return nil, fmt.Errorf("record changed message: %w", core.ErrNoOrganization)
	}
	return &msg, nil
}
