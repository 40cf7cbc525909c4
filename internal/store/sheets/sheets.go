// Package sheets is the Google Sheets record store. Each domain lives in its
// own tab with a header row; rows carry the owning organization in the Org
// column so one spreadsheet can serve several organizations.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"flock/internal/core"
	"flock/internal/log"
	"flock/internal/store"
	"flock/internal/timewindow"
)

// ValuesAPI is the slice of the Sheets values API the store uses.
type ValuesAPI interface {
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	Append(ctx context.Context, rng string, row []interface{}) error
}

type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	// Location interprets timestamps written without a zone. Defaults to UTC.
	Location *time.Location
}

type Client struct {
	api    ValuesAPI
	loc    *time.Location
	logger *log.Logger
}

var _ store.Store = (*Client)(nil)

// New creates a Sheets store authenticated with service account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithAPI(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.Location, logger), nil
}

// NewWithAPI builds a store over an existing values API.
func NewWithAPI(api ValuesAPI, loc *time.Location, logger *log.Logger) *Client {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{api: api, loc: loc, logger: logger.WithComponent(log.ComponentSheets)}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (v *serviceValues) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(v.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v *serviceValues) Append(ctx context.Context, rng string, row []interface{}) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
	_, err := v.svc.Spreadsheets.Values.Append(v.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}

func (c *Client) read(ctx context.Context, tab string) (*sheet, error) {
	rng := fmt.Sprintf("%s!A:Z", tab)
	values, err := c.api.Get(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return newSheet(tab, values, c.loc)
}

func load[T store.Validator](ctx context.Context, c *Client, tab string, domain core.Domain, orgID uuid.UUID, window *timewindow.Window,
	parse func(*sheet, uuid.UUID) []T, at func(T) time.Time) ([]T, error) {
	s, err := c.read(ctx, tab)
	if err != nil {
		return nil, err
	}
	all := store.Valid(ctx, c.logger, domain, parse(s, orgID))
	out := all[:0]
	for _, rec := range all {
		if timewindow.In(window, at(rec)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *Client) People(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Person, error) {
	return load(ctx, c, tabPeople, core.DomainPeople, orgID, window, parsePeople,
		func(p core.Person) time.Time { return p.CreatedAt })
}

func (c *Client) Contributions(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Contribution, error) {
	return load(ctx, c, tabContributions, core.DomainContributions, orgID, window, parseContributions,
		func(g core.Contribution) time.Time { return g.ReceivedAt })
}

func (c *Client) Events(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Event, error) {
	return load(ctx, c, tabEvents, core.DomainEvents, orgID, window, parseEvents,
		func(e core.Event) time.Time { return e.StartsAt })
}

func (c *Client) Attendance(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.AttendanceMark, error) {
	return load(ctx, c, tabAttendance, core.DomainAttendance, orgID, window, parseAttendance,
		func(m core.AttendanceMark) time.Time { return m.MarkedAt })
}

func (c *Client) Tasks(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Task, error) {
	return load(ctx, c, tabTasks, core.DomainTasks, orgID, window, parseTasks,
		func(t core.Task) time.Time { return t.CreatedAt })
}

func (c *Client) Messages(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Message, error) {
	return load(ctx, c, tabMessages, core.DomainMessages, orgID, window, parseMessages,
		func(m core.Message) time.Time { return m.SentAt })
}

func (c *Client) Households(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.HouseholdLink, error) {
	return load(ctx, c, tabHouseholds, core.DomainHouseholds, orgID, window, parseHouseholds,
		func(l core.HouseholdLink) time.Time { return l.LinkedAt })
}

// AddContribution appends one row to the Contributions tab, laid out after
// the tab's header row.
func (c *Client) AddContribution(ctx context.Context, g core.Contribution) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!1:1", tabContributions)
	values, err := c.api.Get(ctx, rng)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rng, err)
	}
	if _, err := newSheet(tabContributions, values, c.loc); err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("unexpected %s header: tab is empty", tabContributions)
	}

	row := contributionRow(toStrings(values[0]), g)
	if err := c.api.Append(ctx, fmt.Sprintf("%s!A:Z", tabContributions), row); err != nil {
		return "", fmt.Errorf("append to %s: %w", tabContributions, err)
	}

	c.logger.InfoContext(ctx, "Contribution appended to sheet",
		log.FieldRecordID, g.ID,
		log.FieldOrgID, g.OrgID.String(),
		log.FieldAmountCents, core.MoneyFromDecimal(g.Amount).Cents)

	return g.ID, nil
}
