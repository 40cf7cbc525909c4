package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"flock/internal/core"
)

// Tab names and header labels. Header matching is case-insensitive and
// column order is free.
const (
	tabPeople        = "People"
	tabContributions = "Contributions"
	tabEvents        = "Events"
	tabAttendance    = "Attendance"
	tabTasks         = "Tasks"
	tabMessages      = "Messages"
	tabHouseholds    = "Households"

	colID          = "ID"
	colOrg         = "Org"
	colFirstName   = "First Name"
	colLastName    = "Last Name"
	colStatus      = "Status"
	colBirthday    = "Birthday"
	colAnniversary = "Anniversary"
	colJoined      = "Joined"
	colCreated     = "Created"
	colPersonID    = "Person ID"
	colAmount      = "Amount"
	colFund        = "Fund"
	colMethod      = "Method"
	colReceived    = "Received"
	colTitle       = "Title"
	colCategory    = "Category"
	colStarts      = "Starts"
	colEnds        = "Ends"
	colEventID     = "Event ID"
	colMarked      = "Marked"
	colPriority    = "Priority"
	colAssignee    = "Assignee"
	colDue         = "Due"
	colCompleted   = "Completed"
	colChannel     = "Channel"
	colRecipients  = "Recipients"
	colSent        = "Sent"
	colHousehold   = "Household ID"
	colRole        = "Role"
	colLinked      = "Linked"
)

// required lists the headers each tab must carry.
var required = map[string][]string{
	tabPeople:        {colID, colOrg, colCreated},
	tabContributions: {colID, colOrg, colAmount, colReceived},
	tabEvents:        {colID, colOrg, colStarts},
	tabAttendance:    {colID, colOrg, colEventID, colPersonID, colMarked},
	tabTasks:         {colID, colOrg, colStatus, colCreated},
	tabMessages:      {colID, colOrg, colStatus, colSent},
	tabHouseholds:    {colHousehold, colOrg, colPersonID},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// sheet is a parsed tab: the header index plus data rows as strings.
type sheet struct {
	name    string
	headers []string
	rows    [][]string
	loc     *time.Location
}

func newSheet(name string, values [][]interface{}, loc *time.Location) (*sheet, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &sheet{name: name, loc: loc}
	if len(values) == 0 {
		return s, nil
	}
	s.headers = toStrings(values[0])
	var missing []string
	for _, col := range required[name] {
		if indexOf(s.headers, col) == -1 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected %s header: missing %s; got headers=%v", name, strings.Join(missing, ","), s.headers)
	}
	for _, raw := range values[1:] {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		s.rows = append(s.rows, row)
	}
	return s, nil
}

// each calls fn for every row belonging to orgID.
func (s *sheet) each(orgID uuid.UUID, fn func(r rowReader)) {
	orgCol := indexOf(s.headers, colOrg)
	for _, row := range s.rows {
		id, err := uuid.Parse(safeGet(row, orgCol))
		if err != nil || id != orgID {
			continue
		}
		fn(rowReader{s: s, row: row})
	}
}

type rowReader struct {
	s   *sheet
	row []string
}

func (r rowReader) str(col string) string {
	return safeGet(r.row, indexOf(r.s.headers, col))
}

func (r rowReader) at(col string) time.Time {
	t, _ := parseTime(r.str(col), r.s.loc)
	return t
}

func (r rowReader) atPtr(col string) *time.Time {
	t, ok := parseTime(r.str(col), r.s.loc)
	if !ok {
		return nil
	}
	return &t
}

func (r rowReader) num(col string) int {
	v := r.str(col)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func parsePeople(s *sheet, orgID uuid.UUID) []core.Person {
	var out []core.Person
	s.each(orgID, func(r rowReader) {
		out = append(out, core.Person{
			ID:          r.str(colID),
			OrgID:       orgID,
			FirstName:   r.str(colFirstName),
			LastName:    r.str(colLastName),
			Status:      r.str(colStatus),
			Birthday:    r.atPtr(colBirthday),
			Anniversary: r.atPtr(colAnniversary),
			JoinedAt:    r.atPtr(colJoined),
			CreatedAt:   r.at(colCreated),
		})
	})
	return out
}

func parseContributions(s *sheet, orgID uuid.UUID) []core.Contribution {
	var out []core.Contribution
	s.each(orgID, func(r rowReader) {
		// Unparseable amounts stay zero and are quarantined by the caller.
		amount, _ := core.ParseAmount(r.str(colAmount))
		out = append(out, core.Contribution{
			ID:         r.str(colID),
			OrgID:      orgID,
			PersonID:   r.str(colPersonID),
			Amount:     amount,
			Fund:       r.str(colFund),
			Method:     r.str(colMethod),
			ReceivedAt: r.at(colReceived),
		})
	})
	return out
}

func parseEvents(s *sheet, orgID uuid.UUID) []core.Event {
	var out []core.Event
	s.each(orgID, func(r rowReader) {
		out = append(out, core.Event{
			ID:       r.str(colID),
			OrgID:    orgID,
			Title:    r.str(colTitle),
			Category: r.str(colCategory),
			StartsAt: r.at(colStarts),
			EndsAt:   r.atPtr(colEnds),
		})
	})
	return out
}

func parseAttendance(s *sheet, orgID uuid.UUID) []core.AttendanceMark {
	var out []core.AttendanceMark
	s.each(orgID, func(r rowReader) {
		out = append(out, core.AttendanceMark{
			ID:       r.str(colID),
			OrgID:    orgID,
			EventID:  r.str(colEventID),
			PersonID: r.str(colPersonID),
			Status:   r.str(colStatus),
			MarkedAt: r.at(colMarked),
		})
	})
	return out
}

func parseTasks(s *sheet, orgID uuid.UUID) []core.Task {
	var out []core.Task
	s.each(orgID, func(r rowReader) {
		out = append(out, core.Task{
			ID:          r.str(colID),
			OrgID:       orgID,
			Title:       r.str(colTitle),
			Status:      r.str(colStatus),
			Priority:    r.str(colPriority),
			AssigneeID:  r.str(colAssignee),
			CreatedAt:   r.at(colCreated),
			DueAt:       r.atPtr(colDue),
			CompletedAt: r.atPtr(colCompleted),
		})
	})
	return out
}

func parseMessages(s *sheet, orgID uuid.UUID) []core.Message {
	var out []core.Message
	s.each(orgID, func(r rowReader) {
		out = append(out, core.Message{
			ID:         r.str(colID),
			OrgID:      orgID,
			Channel:    r.str(colChannel),
			Status:     r.str(colStatus),
			Recipients: r.num(colRecipients),
			SentAt:     r.at(colSent),
		})
	})
	return out
}

func parseHouseholds(s *sheet, orgID uuid.UUID) []core.HouseholdLink {
	var out []core.HouseholdLink
	s.each(orgID, func(r rowReader) {
		out = append(out, core.HouseholdLink{
			HouseholdID: r.str(colHousehold),
			OrgID:       orgID,
			PersonID:    r.str(colPersonID),
			Role:        r.str(colRole),
			LinkedAt:    r.at(colLinked),
		})
	})
	return out
}

// contributionRow lays c out in the order of headers. Columns the tab does
// not have are dropped; headers this code does not know stay blank.
func contributionRow(headers []string, c core.Contribution) []interface{} {
	values := map[string]string{
		colID:       c.ID,
		colOrg:      c.OrgID.String(),
		colPersonID: c.PersonID,
		colAmount:   c.Amount.String(),
		colFund:     c.Fund,
		colMethod:   c.Method,
		colReceived: c.ReceivedAt.Format(time.RFC3339),
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = ""
		for name, v := range values {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				row[i] = v
				break
			}
		}
	}
	return row
}

func parseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
