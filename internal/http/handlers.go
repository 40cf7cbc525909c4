package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"flock/internal/core"
	"flock/internal/identity"
	"flock/internal/log"
	"flock/internal/services"
)

// Dashboard is the read side the handlers serve.
type Dashboard interface {
	CurrentSnapshot(ctx context.Context) (core.ConsolidatedSnapshot, bool, error)
	CurrentGivingTrend(ctx context.Context) (core.TrendReport, bool, error)
	Invalidate(orgID uuid.UUID)
	InvalidateAll()
}

// ContributionRecorder is the write side.
type ContributionRecorder interface {
	Record(ctx context.Context, orgID uuid.UUID, in services.ContributionInput) (string, error)
}

type Handler struct {
	dashboard     Dashboard
	contributions ContributionRecorder
	resolver      identity.Resolver
	retryAfter    time.Duration
}

func NewHandler(dashboard Dashboard, contributions ContributionRecorder, resolver identity.Resolver) *Handler {
	if resolver == nil {
		resolver = identity.ContextResolver{}
	}
	return &Handler{
		dashboard:     dashboard,
		contributions: contributions,
		resolver:      resolver,
		retryAfter:    5 * time.Second,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetDashboard answers 204 when no organization is selected.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok, err := h.dashboard.CurrentSnapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) GetGivingTrend(w http.ResponseWriter, r *http.Request) {
	report, ok, err := h.dashboard.CurrentGivingTrend(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.resolver.CurrentOrganizationID(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "organization required", nil)
		return
	}

	in, err := parseContribution(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id, err := h.contributions.Record(r.Context(), orgID, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateContributionResponse{ID: id})
}

func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.resolver.CurrentOrganizationID(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "organization required", nil)
		return
	}
	h.dashboard.Invalidate(orgID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Cache invalidated on request",
		log.FieldOrgID, orgID.String(),
		log.FieldOperation, log.OpInvalidate)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) InvalidateAllCaches(w http.ResponseWriter, r *http.Request) {
	h.dashboard.InvalidateAll()
	log.FromContext(r.Context()).InfoContext(r.Context(), "All caches purged on request",
		log.FieldOperation, log.OpInvalidate)
	w.WriteHeader(http.StatusNoContent)
}
