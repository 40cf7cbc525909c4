package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flock/internal/services"
)

const maxBodyBytes = 64 << 10

// amountField accepts a JSON string ("12,50") or number (12.5) verbatim so
// no float conversion touches the amount.
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = amountField(n.String())
	return nil
}

type CreateContributionRequest struct {
	PersonID   string      `json:"person_id"`
	Amount     amountField `json:"amount"`
	Fund       string      `json:"fund"`
	Method     string      `json:"method"`
	ReceivedAt string      `json:"received_at"`
}

type CreateContributionResponse struct {
	ID string `json:"id"`
}

// parseContribution decodes the request body into service input.
// received_at accepts RFC 3339 or YYYY-MM-DD; empty means now.
func parseContribution(w http.ResponseWriter, r *http.Request) (services.ContributionInput, error) {
	var req CreateContributionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return services.ContributionInput{}, fmt.Errorf("decode body: %w", err)
	}

	in := services.ContributionInput{
		PersonID: req.PersonID,
		Amount:   string(req.Amount),
		Fund:     req.Fund,
		Method:   req.Method,
	}
	if raw := strings.TrimSpace(req.ReceivedAt); raw != "" {
		at, err := parseTimestamp(raw)
		if err != nil {
			return services.ContributionInput{}, err
		}
		in.ReceivedAt = at
	}
	return in, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("received_at must be RFC 3339 or YYYY-MM-DD")
}
