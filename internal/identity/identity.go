// Package identity resolves which organization a request acts for.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderName carries the organization id on incoming requests.
const HeaderName = "X-Organization-ID"

type ctxKey string

const orgIDKey ctxKey = "organization_id"

// WithOrganizationID stores the organization id in the context.
func WithOrganizationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, orgIDKey, id)
}

// OrganizationIDFromCtx extracts the organization id from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func OrganizationIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(orgIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Resolver answers "which organization is current". ok is false when there
// is none, which callers treat as nothing to compute rather than an error.
type Resolver interface {
	CurrentOrganizationID(ctx context.Context) (uuid.UUID, bool)
}

// ContextResolver reads the id placed in the context by Middleware. When the
// context has none, Fallback is used if set.
type ContextResolver struct {
	Fallback uuid.UUID
}

func (r ContextResolver) CurrentOrganizationID(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := OrganizationIDFromCtx(ctx); ok {
		return id, true
	}
	if r.Fallback != uuid.Nil {
		return r.Fallback, true
	}
	return uuid.Nil, false
}

// Middleware copies a valid X-Organization-ID header into the request
// context. A present but malformed header is rejected with 400.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderName))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			http.Error(w, "invalid "+HeaderName+" header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOrganizationID(r.Context(), id)))
	})
}
