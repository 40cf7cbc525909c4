package core

import (
	"time"

	"github.com/google/uuid"

	"flock/internal/timewindow"
)

// LabelCount is one entry of a category breakdown.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelAmount is a category breakdown entry carrying a money total.
type LabelAmount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Total Money  `json:"total"`
}

type PeopleStats struct {
	Total       int          `json:"total"`
	Active      int          `json:"active"`
	Inactive    int          `json:"inactive"`
	Visitors    int          `json:"visitors"`
	Other       int          `json:"other"`
	NewInWindow int          `json:"new_in_window"`
	ByStatus    []LabelCount `json:"by_status"`
}

type ContributorTotal struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name,omitempty"`
	Gifts    int    `json:"gifts"`
	Total    Money  `json:"total"`
}

type ContributionSummary struct {
	ID         string    `json:"id"`
	PersonID   string    `json:"person_id"`
	Name       string    `json:"name,omitempty"`
	Amount     Money     `json:"amount"`
	Fund       string    `json:"fund"`
	ReceivedAt time.Time `json:"received_at"`
}

type ContributionStats struct {
	Count           int                   `json:"count"`
	Givers          int                   `json:"givers"`
	Total           Money                 `json:"total"`
	Average         Money                 `json:"average"`
	WeekTotal       Money                 `json:"week_total"`
	ByFund          []LabelAmount         `json:"by_fund"`
	ByMethod        []LabelAmount         `json:"by_method"`
	TopContributors []ContributorTotal    `json:"top_contributors"`
	Recent          []ContributionSummary `json:"recent"`
}

type EventSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	StartsAt time.Time `json:"starts_at"`
}

type EventStats struct {
	Total      int            `json:"total"`
	Upcoming   int            `json:"upcoming"`
	Past       int            `json:"past"`
	ByCategory []LabelCount   `json:"by_category"`
	Next       []EventSummary `json:"next"`
}

// RateBasis tells which slice of history the weekly attendance rate was
// computed from.
type RateBasis string

const (
	RateTrailing90Days RateBasis = "trailing_90_days"
	RateAllTime        RateBasis = "all_time"
	RateNone           RateBasis = "none"
)

type AttendanceStats struct {
	Marks            int          `json:"marks"`
	Present          int          `json:"present"`
	NotPresent       int          `json:"not_present"`
	UniqueAttendees  int          `json:"unique_attendees"`
	Events           int          `json:"events"`
	AveragePerEvent  float64      `json:"average_per_event"`
	ByStatus         []LabelCount `json:"by_status"`
	WeeklyRate       float64      `json:"weekly_rate"`
	RateBasis        RateBasis    `json:"rate_basis"`
	QualifyingEvents int          `json:"qualifying_events"`
	ActiveMembers    int          `json:"active_members"`
}

type TaskSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

type TaskStats struct {
	Total             int           `json:"total"`
	Open              int           `json:"open"`
	InProgress        int           `json:"in_progress"`
	Done              int           `json:"done"`
	Cancelled         int           `json:"cancelled"`
	Overdue           int           `json:"overdue"`
	CompletedInWindow int           `json:"completed_in_window"`
	CompletionRate    float64       `json:"completion_rate"`
	ByPriority        []LabelCount  `json:"by_priority"`
	DueSoon           []TaskSummary `json:"due_soon"`
}

type MessagingStats struct {
	Total        int          `json:"total"`
	Delivered    int          `json:"delivered"`
	Failed       int          `json:"failed"`
	Pending      int          `json:"pending"`
	Recipients   int          `json:"recipients"`
	DeliveryRate float64      `json:"delivery_rate"`
	ByChannel    []LabelCount `json:"by_channel"`
}

// CelebrationKind distinguishes the recurring dates tracked per person.
type CelebrationKind string

const (
	Birthday           CelebrationKind = "birthday"
	WeddingAnniversary CelebrationKind = "anniversary"
	JoinAnniversary    CelebrationKind = "join_anniversary"
)

type Celebration struct {
	PersonID string          `json:"person_id"`
	Name     string          `json:"name"`
	Kind     CelebrationKind `json:"kind"`
	Date     time.Time       `json:"date"`
	DaysAway int             `json:"days_away"`
	Years    int             `json:"years"`
}

type CelebrationStats struct {
	Upcoming          []Celebration `json:"upcoming"`
	Birthdays         int           `json:"birthdays"`
	Anniversaries     int           `json:"anniversaries"`
	JoinAnniversaries int           `json:"join_anniversaries"`
	ThisMonth         int           `json:"this_month"`
}

type HouseholdStats struct {
	Households     int          `json:"households"`
	LinkedPeople   int          `json:"linked_people"`
	SingleMember   int          `json:"single_member"`
	UnlinkedPeople int          `json:"unlinked_people"`
	AverageSize    float64      `json:"average_size"`
	ByRole         []LabelCount `json:"by_role"`
}

// TrendBasis names the comparison a giving trend was computed against.
type TrendBasis string

const (
	BasisPriorMonth      TrendBasis = "prior_month"
	BasisTrailingAverage TrendBasis = "trailing_average"
	BasisNone            TrendBasis = "none"
)

type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionSteady  Direction = "steady"
	DirectionUnknown Direction = "unknown"
)

// TrendResult compares the giving of one week-of-month slot against the
// same slot in previous months.
type TrendResult struct {
	Week              int               `json:"week"`
	UsedPreviousWeek  bool              `json:"used_previous_week"`
	CurrentWindow     timewindow.Window `json:"current_window"`
	CurrentTotal      Money             `json:"current_total"`
	TrailingAverage   Money             `json:"trailing_average"`
	TrailingMonths    int               `json:"trailing_months"`
	PriorMonthTotal   Money             `json:"prior_month_total"`
	DeltaVsAverage    *float64          `json:"delta_vs_average"`
	DeltaVsPriorMonth *float64          `json:"delta_vs_prior_month"`
	Basis             TrendBasis        `json:"basis"`
	Direction         Direction         `json:"direction"`
	Narrative         string            `json:"narrative"`
}

// WeekTotal is the giving total of one week-of-month slot.
type WeekTotal struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Week  int        `json:"week"`
	Total Money      `json:"total"`
	Gifts int        `json:"gifts"`
}

type TrendReport struct {
	Result TrendResult `json:"result"`
	Weeks  []WeekTotal `json:"weeks"`
}

// ConsolidatedSnapshot is the complete dashboard for one organization,
// produced in a single pass.
type ConsolidatedSnapshot struct {
	OrgID         uuid.UUID         `json:"org_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Window        timewindow.Window `json:"window"`
	People        PeopleStats       `json:"people"`
	Contributions ContributionStats `json:"contributions"`
	Events        EventStats        `json:"events"`
	Attendance    AttendanceStats   `json:"attendance"`
	Tasks         TaskStats         `json:"tasks"`
	Messaging     MessagingStats    `json:"messaging"`
	Celebrations  CelebrationStats  `json:"celebrations"`
	Households    HouseholdStats    `json:"households"`
	Giving        TrendReport       `json:"giving"`
}
