package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flock/internal/core"
	"flock/internal/log"
	"flock/internal/store"
)

// Publisher announces record changes to other replicas.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, orgID uuid.UUID, domain core.Domain) error
}

// Invalidator drops the cached dashboards of one organization.
type Invalidator interface {
	Invalidate(orgID uuid.UUID)
}

// ContributionInput is a gift as submitted by a caller. Amount accepts a
// comma or a dot as decimal separator.
type ContributionInput struct {
	PersonID   string
	Amount     string
	Fund       string
	Method     string
	ReceivedAt time.Time
}

// ContributionService records gifts and keeps every replica's dashboard
// caches coherent with the write.
type ContributionService struct {
	writer      store.ContributionWriter
	invalidator Invalidator
	publisher   Publisher
	now         func() time.Time
	logger      *log.Logger
	events      *log.StructuredLogger
}

// NewContributionService wires the write path. publisher may be nil when
// no broker is configured.
func NewContributionService(writer store.ContributionWriter, invalidator Invalidator, publisher Publisher, logger *log.Logger) *ContributionService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentContribution)
	return &ContributionService{
		writer:      writer,
		invalidator: invalidator,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
		events:      log.NewStructuredLogger(logger),
	}
}

// Record saves a contribution for orgID, invalidates the local caches and
// publishes a record-changed event. A failed publish is logged, not
// returned: the gift is already saved.
func (s *ContributionService) Record(ctx context.Context, orgID uuid.UUID, in ContributionInput) (string, error) {
	if orgID == uuid.Nil {
		return "", core.ErrNoOrganization
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return "", err
	}

	received := in.ReceivedAt
	if received.IsZero() {
		received = s.now()
	}

	c := core.Contribution{
		OrgID:      orgID,
		PersonID:   strings.TrimSpace(in.PersonID),
		Amount:     amount,
		Fund:       strings.TrimSpace(in.Fund),
		Method:     strings.TrimSpace(in.Method),
		ReceivedAt: received,
	}

	id, err := s.writer.AddContribution(ctx, c)
	if err != nil {
		return "", fmt.Errorf("save contribution: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(orgID)
	}

	if err := s.publish(ctx, orgID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record changed message",
			log.FieldOrgID, orgID.String(),
			log.FieldRecordID, id,
			log.FieldError, err.Error())
	}

	s.events.LogContributionRecorded(ctx, orgID.String(), id, core.MoneyFromDecimal(amount).Cents, c.Fund)
	return id, nil
}

func (s *ContributionService) publish(ctx context.Context, orgID uuid.UUID) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping record changed message")
		return nil
	}
	return s.publisher.PublishRecordChanged(ctx, orgID, core.DomainContributions)
}
