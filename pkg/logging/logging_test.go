package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose int
		want    slog.Level
		wantErr bool
	}{
		{"", 0, slog.LevelInfo, false},
		{"", 1, slog.LevelDebug, false},
		{"", 3, LevelTrace, false},
		{"warn", 2, slog.LevelWarn, false},
		{"ERROR", 0, slog.LevelError, false},
		{"loud", 0, slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name, tt.verbose)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q, %d) error = %v, wantErr %v", tt.name, tt.verbose, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.name, tt.verbose, got, tt.want)
		}
	}
}

func TestCompactHandlerIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil)).With("component", "refresh")

	l.Info("forest rebuilt", "resource", "categories", "records", 12)

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected INFO prefix, got %q", line)
	}
	for _, want := range []string{"forest rebuilt", "[refresh]", "resource=categories", "records=12"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l.Info("hidden")
	l.Warn("shown", "note", "two words")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info line should be filtered: %q", out)
	}
	if !strings.Contains(out, `note="two words"`) {
		t.Errorf("Expected quoted value, got %q", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// Invalid client ID is replaced
	req := httptest.NewRequest(http.MethodGet, "/api/resources", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("Expected generated UUID, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("Response header %q does not match context ID %q", rec.Header().Get("X-Request-ID"), seen)
	}

	// Valid client ID is kept
	id := uuid.New().String()
	req = httptest.NewRequest(http.MethodGet, "/api/resources", nil)
	req.Header.Set("X-Request-ID", id)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != id {
		t.Errorf("Expected client ID %q to be kept, got %q", id, seen)
	}
}

func TestComponentLoggerFollowsConfigure(t *testing.T) {
	l := New("watcher")

	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(slog.LevelDebug, false)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Configure(slog.LevelInfo, false)
	})

	ctx := WithRequestID(context.Background(), "0123456789abcdef")
	l.DebugContext(ctx, "snapshot changed", "resource", "payees")

	line := buf.String()
	for _, want := range []string{"[DEBUG]", "[watcher]", "resource=payees", "01234567"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}
