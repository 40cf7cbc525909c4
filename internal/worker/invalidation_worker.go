package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"flock/internal/amqp"
	"flock/internal/log"
)

// Invalidator drops cached dashboards for one organization.
type Invalidator interface {
	Invalidate(orgID uuid.UUID)
}

// Consumer delivers record-changed events until ctx is done.
type Consumer interface {
	ConsumeRecordChanged(ctx context.Context, handler amqp.Handler) error
}

// InvalidationWorker applies record-changed events published by other
// replicas to the local dashboard caches.
type InvalidationWorker struct {
	invalidator Invalidator
	logger      *log.Logger
}

func NewInvalidationWorker(invalidator Invalidator, logger *log.Logger) *InvalidationWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &InvalidationWorker{
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentAMQP),
	}
}

// HandleRecordChanged invalidates the organization named in msg.
func (w *InvalidationWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	if msg == nil || msg.OrgID == uuid.Nil {
		return nil
	}
	w.invalidator.Invalidate(msg.OrgID)
	w.logger.DebugContext(ctx, "Applied record changed event",
		log.FieldOrgID, msg.OrgID.String(),
		log.FieldDomain, msg.Domain.String())
	return nil
}

// Run consumes until ctx is cancelled. Cancellation is a clean stop.
func (w *InvalidationWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "Invalidation worker started")
	err := c.ConsumeRecordChanged(ctx, w.HandleRecordChanged)
	if errors.Is(err, context.Canceled) {
		w.logger.InfoContext(ctx, "Invalidation worker stopped")
		return nil
	}
	return err
}
