package log

import "sort"

// Field names shared by every component so records can be joined on them.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldReferer     = "referer"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOrgID       = "org_id"
	FieldDomain      = "domain"
	FieldRecordID    = "record_id"
	FieldAmountCents = "amount_cents"
	FieldFund        = "fund"
	FieldBackend     = "backend"
)

const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentDashboard    = "dashboard"
	ComponentAggregator   = "aggregator"
	ComponentContribution = "contribution"
	ComponentStore        = "store"
	ComponentAMQP         = "amqp"
	ComponentSheets       = "sheets"
	ComponentCache        = "cache"
	ComponentTrace        = "trace"
	ComponentBackend      = "backend"
)

const (
	OpCreate     = "create"
	OpBuild      = "build"
	OpInvalidate = "invalidate"
)

// LogFields collects attributes for one record.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError is a no-op for a nil error.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithOrg(orgID string) LogFields {
	f[FieldOrgID] = orgID
	return f
}

func (f LogFields) WithDomain(domain string) LogFields {
	f[FieldDomain] = domain
	return f
}

func (f LogFields) WithContribution(id string, amountCents int64, fund string) LogFields {
	f[FieldRecordID] = id
	f[FieldAmountCents] = amountCents
	if fund != "" {
		f[FieldFund] = fund
	}
	return f
}

// WithHTTPRequest skips empty query, user agent and referer.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	for k, v := range map[string]string{FieldQuery: query, FieldUserAgent: userAgent, FieldReferer: referer} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key/value pairs, sorted by key.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
