package httpapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/handlers"
	"github.com/PlayerIUnknown/aegis-gui/internal/logging"
)

func TestHTTPErrorHandlerInternalErrorIsGeneric(t *testing.T) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handlers.ContextKeyRequestID, "req-123")

	es := &EchoServer{h: &handlers.Handlers{}, e: e}
	es.httpErrorHandler(c, errors.New("very sensitive error"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusInternalServerError)
	}

	body := rec.Body.String()
	if strings.Contains(body, "very sensitive") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if !strings.Contains(body, "Internal server error") {
		t.Fatalf("response missing generic message: %q", body)
	}
	if !strings.Contains(body, "Reference: req-123") {
		t.Fatalf("response missing request reference: %q", body)
	}
	if !strings.Contains(body, "Code: "+handlers.InternalErrorCode) {
		t.Fatalf("response missing error code: %q", body)
	}
}

func TestHTTPErrorHandlerNotFoundDoesNotLeakMessage(t *testing.T) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	es := &EchoServer{h: &handlers.Handlers{}, e: e}
	es.httpErrorHandler(c, echo.NewHTTPError(http.StatusNotFound, "leaky not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusNotFound)
	}

	body := rec.Body.String()
	if strings.Contains(body, "leaky") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if !strings.Contains(body, "404 page not found") {
		t.Fatalf("response missing not found message: %q", body)
	}
}

func TestHTTPErrorHandlerEchoErrNotFoundUsesNotFoundStatus(t *testing.T) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	es := &EchoServer{h: &handlers.Handlers{}, e: e}
	es.httpErrorHandler(c, echo.ErrNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusNotFound)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "404 page not found") {
		t.Fatalf("response missing not found message: %q", body)
	}
}

func TestHTTPStatusFromErrorUsesStatusCoder(t *testing.T) {
	if got := httpStatusFromError(echo.ErrNotFound); got != http.StatusNotFound {
		t.Fatalf("status=%d want %d", got, http.StatusNotFound)
	}
	if got := httpStatusFromError(echo.ErrForbidden); got != http.StatusForbidden {
		t.Fatalf("status=%d want %d", got, http.StatusForbidden)
	}
	if got := httpStatusFromError(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status=%d want %d", got, http.StatusInternalServerError)
	}
}

func TestHTTPErrorHandlerBadRequestUsesStatusText(t *testing.T) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/bad", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	es := &EchoServer{h: &handlers.Handlers{}, e: e}
	es.httpErrorHandler(c, echo.NewHTTPError(http.StatusBadRequest, "leaky bad request"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusBadRequest)
	}

	body := rec.Body.String()
	if strings.Contains(body, "leaky") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if got := strings.TrimSpace(body); got != http.StatusText(http.StatusBadRequest) {
		t.Fatalf("body=%q want %q", got, http.StatusText(http.StatusBadRequest))
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Config{ScanPageLimit: 50}
	h := &handlers.Handlers{Cfg: cfg, Sessions: auth.NewSessionManager(cfg)}
	es, err := NewEchoServer(cfg, h, logging.Discard())
	if err != nil {
		t.Fatalf("NewEchoServer() error = %v", err)
	}
	return es.Handler()
}

func TestNewEchoServerRequiresSessions(t *testing.T) {
	if _, err := NewEchoServer(config.Config{}, &handlers.Handlers{}, nil); err == nil {
		t.Fatalf("expected error without a session manager")
	}
}

func TestHealthzAssignsRequestID(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Fatalf("X-Request-ID = %q, want req-abc", got)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		target   string
		status   int
		location string
	}{
		{target: "/", status: http.StatusSeeOther, location: "/login"},
		{target: "/setup", status: http.StatusSeeOther, location: "/login?next=%2Fsetup"},
		{target: "/scans/s1/sbom.csv", status: http.StatusSeeOther, location: "/login?next=%2Fscans%2Fs1%2Fsbom.csv"},
		{target: "/api/repositories", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com"+tt.target, nil))
		if rec.Code != tt.status {
			t.Fatalf("%s: status=%d want %d", tt.target, rec.Code, tt.status)
		}
		if got := rec.Header().Get("Location"); got != tt.location {
			t.Fatalf("%s: Location=%q want %q", tt.target, got, tt.location)
		}
	}
}

func TestLoginPageRendersCSRFToken(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="csrf"`) || !strings.Contains(body, `action="/login"`) {
		t.Fatalf("login form missing csrf field or action")
	}
}

func TestLoginPostWithoutCSRFIsRejected(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "http://example.com/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code < 400 || rec.Code >= 500 {
		t.Fatalf("status=%d, want 4xx", rec.Code)
	}
}

func TestStaticStylesheetIsServed(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/static/app.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestRequestLoggerRecordsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := config.Config{ScanPageLimit: 50}
	h := &handlers.Handlers{Cfg: cfg, Sessions: auth.NewSessionManager(cfg)}
	es, err := NewEchoServer(cfg, h, logger)
	if err != nil {
		t.Fatalf("NewEchoServer() error = %v", err)
	}
	es.e.GET("/boom", func(c *echo.Context) error {
		panic("kaboom")
	})
	srv := es.Handler()

	for _, target := range []string{"/healthz", "/login", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, "http://example.com"+target, nil)
		req.Header.Set("X-Request-ID", "req"+strings.ReplaceAll(target, "/", "-"))
		srv.ServeHTTP(httptest.NewRecorder(), req)
	}

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if rec["msg"] == "http request" {
			records = append(records, rec)
		}
	}
	if len(records) != 2 {
		t.Fatalf("logged %d requests, want 2 (healthz is skipped): %s", len(records), buf.String())
	}

	login := records[0]
	if login["path"] != "/login" || login["status"] != float64(http.StatusOK) || login["level"] != "INFO" {
		t.Fatalf("unexpected login record %v", login)
	}
	if login["request_id"] != "req-login" {
		t.Fatalf("request_id = %v, want req-login", login["request_id"])
	}

	boom := records[1]
	if boom["status"] != float64(http.StatusInternalServerError) || boom["level"] != "ERROR" {
		t.Fatalf("unexpected panic record %v", boom)
	}
}
