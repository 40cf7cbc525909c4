package store

import (
	"context"

	"flock/internal/core"
	"flock/internal/log"
)

// Validator is implemented by every core record type.
type Validator interface {
	Validate() error
}

// Valid returns the records that pass Validate, logging each rejected one
// at Warn. Order is preserved.
func Valid[T Validator](ctx context.Context, logger *log.Logger, domain core.Domain, records []T) []T {
	out := records[:0:0]
	for _, r := range records {
		if err := r.Validate(); err != nil {
			if logger != nil {
				logger.WarnContext(ctx, "Malformed record quarantined",
					log.FieldDomain, domain.String(),
					log.FieldError, err.Error())
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
