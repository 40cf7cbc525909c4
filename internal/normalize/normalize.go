// Package normalize maps free-form category labels coming from the data
// stores onto a small canonical set per domain.
package normalize

import (
	"strings"
	"unicode"
)

// Other is returned for empty labels and, outside event categories, for
// labels no rule recognises.
const Other = "Other"

// Domain selects the rule set applied to a label.
type Domain string

const (
	EventCategory    Domain = "event_category"
	Fund             Domain = "fund"
	PaymentMethod    Domain = "payment_method"
	PersonStatus     Domain = "person_status"
	AttendanceStatus Domain = "attendance_status"
	TaskStatus       Domain = "task_status"
	TaskPriority     Domain = "task_priority"
	MessageChannel   Domain = "message_channel"
	MessageStatus    Domain = "message_status"
	HouseholdRole    Domain = "household_role"
)

// Canonical labels referenced by reducers.
const (
	SundayService = "Sunday Service"
	BibleStudy    = "Bible Study"
	Fellowship    = "Fellowship"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusVisitor  = "Visitor"

	Present = "Present"
	Absent  = "Absent"
	Excused = "Excused"

	TaskOpen       = "Open"
	TaskInProgress = "In Progress"
	TaskDone       = "Done"
	TaskCancelled  = "Cancelled"

	Delivered = "Delivered"
	Failed    = "Failed"
	Pending   = "Pending"
)

type rule struct {
	keywords []string
	label    string
}

// matches reports whether any keyword occurs in words. Keywords are
// matched word by word: leading words exactly, the last one as a word
// prefix, so "deliver" matches "delivered" but "read" misses "unread".
func (r rule) matches(words []string) bool {
	for _, kw := range r.keywords {
		if containsPhrase(words, splitWords(kw)) {
			return true
		}
	}
	return false
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	last := len(phrase) - 1
	for i := 0; i+last < len(words); i++ {
		ok := true
		for j, p := range phrase {
			w := words[i+j]
			if (j < last && w != p) || (j == last && !strings.HasPrefix(w, p)) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

type ruleSet struct {
	rules       []rule
	passThrough bool
}

// Rules are ordered: the first rule with a matching keyword wins.
var rules = map[Domain]ruleSet{
	EventCategory: {
		passThrough: true,
		rules: []rule{
			{[]string{"sunday", "worship", "church"}, SundayService},
			{[]string{"bible", "study"}, BibleStudy},
			{[]string{"fellowship", "social", "gathering"}, Fellowship},
			{[]string{"prayer"}, "Prayer Meeting"},
			{[]string{"youth", "teen"}, "Youth"},
		},
	},
	Fund: {
		rules: []rule{
			{[]string{"tithe"}, "Tithes"},
			{[]string{"offering", "general"}, "Offerings"},
			{[]string{"mission"}, "Missions"},
			{[]string{"building", "capital", "facility"}, "Building Fund"},
			{[]string{"benevolence", "charity", "relief"}, "Benevolence"},
		},
	},
	PaymentMethod: {
		rules: []rule{
			{[]string{"cash"}, "Cash"},
			{[]string{"check", "cheque"}, "Check"},
			{[]string{"ach", "bank", "transfer", "wire"}, "Bank Transfer"},
			{[]string{"card", "credit", "debit", "visa", "mastercard"}, "Card"},
			{[]string{"online", "web", "paypal", "stripe", "app"}, "Online"},
		},
	},
	PersonStatus: {
		rules: []rule{
			{[]string{"inactive", "lapsed", "former"}, StatusInactive},
			{[]string{"visitor", "guest", "first time"}, StatusVisitor},
			{[]string{"active", "member", "regular"}, StatusActive},
		},
	},
	AttendanceStatus: {
		rules: []rule{
			{[]string{"not present", "not attend", "not checked"}, Absent},
			{[]string{"present", "attend", "checked", "check-in", "checkin"}, Present},
			{[]string{"excused"}, Excused},
			{[]string{"absent", "missed", "no show"}, Absent},
		},
	},
	TaskStatus: {
		rules: []rule{
			{[]string{"cancel", "dropped"}, TaskCancelled},
			{[]string{"not started", "not done", "not complete", "not finished"}, TaskOpen},
			{[]string{"done", "complete", "closed", "finished"}, TaskDone},
			{[]string{"progress", "doing", "started"}, TaskInProgress},
			{[]string{"open", "todo", "to do", "pending", "new"}, TaskOpen},
		},
	},
	TaskPriority: {
		rules: []rule{
			{[]string{"urgent", "critical"}, "Urgent"},
			{[]string{"high"}, "High"},
			{[]string{"medium", "normal"}, "Medium"},
			{[]string{"low"}, "Low"},
		},
	},
	MessageChannel: {
		rules: []rule{
			{[]string{"sms", "text"}, "SMS"},
			{[]string{"email", "mail"}, "Email"},
			{[]string{"whatsapp"}, "WhatsApp"},
			{[]string{"push", "app"}, "Push"},
		},
	},
	MessageStatus: {
		rules: []rule{
			{[]string{"undeliver", "not delivered", "fail", "bounce", "error", "reject"}, Failed},
			{[]string{"unsent", "not sent", "queue", "pending", "sending", "scheduled"}, Pending},
			{[]string{"deliver", "sent", "read", "opened"}, Delivered},
		},
	},
	HouseholdRole: {
		rules: []rule{
			{[]string{"head", "primary"}, "Head"},
			{[]string{"spouse", "wife", "husband", "partner"}, "Spouse"},
			{[]string{"child", "son", "daughter", "dependent"}, "Child"},
		},
	},
}

// Normalize maps raw onto the canonical label set of domain. Blank input
// yields Other. Labels that match no rule are returned trimmed for event
// categories and as Other for every other domain.
func Normalize(raw string, domain Domain) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Other
	}
	set, ok := rules[domain]
	if !ok {
		return trimmed
	}
	words := splitWords(trimmed)
	for _, r := range set.rules {
		if r.matches(words) {
			return r.label
		}
	}
	if set.passThrough {
		return trimmed
	}
	return Other
}
