package app

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWithRequestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), log)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}

	out := buf.String()
	for _, want := range []string{`"path":"/teapot"`, `"status":418`, `"method":"GET"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
}

func TestLoggingResponseWriter_PreservesInterfaces(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	lrw := &loggingResponseWriter{ResponseWriter: rec, status: http.StatusOK}

	// Flush must reach the underlying recorder.
	lrw.Flush()
	if !rec.Flushed {
		t.Fatalf("Flush did not propagate")
	}

	if lrw.Unwrap() != rec {
		t.Fatalf("Unwrap must return the wrapped writer")
	}

	// The recorder does not hijack; the wrapper must say so, not panic.
	if _, _, err := lrw.Hijack(); err == nil {
		t.Fatalf("Hijack on a non-hijacker must error")
	}
}
