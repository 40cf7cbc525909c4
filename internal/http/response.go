package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"flock/internal/core"
	"flock/internal/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps dashboard and write-path errors onto statuses.
// A failing data source is retryable: 503 with Retry-After.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *core.FetchError
	var ve *core.ValidationError
	switch {
	case errors.As(err, &fe):
		log.FromContext(r.Context()).WarnContext(r.Context(), "Data source unavailable",
			log.FieldDomain, fe.Domain.String(),
			log.FieldError, err.Error())
		w.Header().Set("Retry-After", retryAfterSeconds(h.retryAfter))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:  "data source temporarily unavailable",
			Domain: fe.Domain.String(),
		})
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, "invalid contribution", ve)
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "invalid amount", nil)
	case errors.Is(err, core.ErrNoOrganization):
		writeError(w, http.StatusBadRequest, "organization required", nil)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

// rateLimited writes the 429 body; the limiter has already set Retry-After.
func rateLimited(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
