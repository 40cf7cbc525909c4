package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentApp, Output: &buf})
	logger.WithComponent(ComponentStore).Warn("Record skipped", FieldDomain, "people")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentStore {
		t.Fatalf("component = %v", entry[FieldComponent])
	}
	if entry[FieldDomain] != "people" {
		t.Fatalf("domain = %v", entry[FieldDomain])
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithOrg("org-1").WithContribution("c1", 1234, "Tithes").WithError(nil)
	if f[FieldOrgID] != "org-1" || f[FieldAmountCents] != int64(1234) {
		t.Fatalf("unexpected fields %v", f)
	}
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error should not add a field")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatal("ToSlice should flatten key/value pairs")
	}
}

func TestComponentWrittenOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf}).WithComponent(ComponentCache)
	logger.Info("Entries cleaned", "removed", 3)

	out := buf.String()
	if n := strings.Count(out, "component="); n != 1 {
		t.Fatalf("component written %d times: %s", n, out)
	}
	if !strings.Contains(out, "component=cache") {
		t.Fatalf("missing component: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("dropped")
	logger.DebugContext(context.Background(), "dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestToSliceIsSorted(t *testing.T) {
	got := NewFields().WithOrg("o").WithDomain("people").WithOperation(OpBuild).ToSlice()
	want := []any{FieldDomain, "people", FieldOperation, OpBuild, FieldOrgID, "o"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFromContextFallback(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != ComponentApp {
		t.Fatalf("fallback logger = %+v", l)
	}

	attached := Discard().WithComponent(ComponentStore)
	if FromContext(NewContext(context.Background(), attached)) != attached {
		t.Fatal("expected attached logger")
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})
	h = ComponentMiddleware(ComponentHTTP)(h)
	h = RequestIDMiddleware(func(*http.Request) string { return "req-42" })(h)
	h = Middleware(logger)(h)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	for _, want := range []string{"msg=handled", "component=http", "request_id=req-42"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}

func TestSnapshotEvents(t *testing.T) {
	var buf bytes.Buffer
	events := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentAggregator))

	events.LogSnapshotFailed(context.Background(), "org-1", "tasks", errors.New("boom"))
	events.LogSnapshotBuilt(context.Background(), "org-1", 1500*time.Millisecond)
	events.LogCacheInvalidated(context.Background(), "")

	out := buf.String()
	for _, want := range []string{"domain=tasks", "error=boom", "duration_ms=1500", "Dashboard caches purged", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}
