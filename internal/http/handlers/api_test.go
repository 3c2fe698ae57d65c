package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
)

func TestHandleAPIRepositories(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/api/repositories?risk=attention")
	h := newSignedInHandler(t, c, seededAPI())

	if err := h.HandleAPIRepositories(c); err != nil {
		t.Fatalf("HandleAPIRepositories() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Items []struct {
			ID         string `json:"id"`
			RepoName   string `json:"repoName"`
			ScanCount  int    `json:"scanCount"`
			LatestScan *struct {
				ID string `json:"id"`
			} `json:"latestScan"`
		} `json:"items"`
		Count int `json:"count"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 2 || got.Count != 1 || len(got.Items) != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
	item := got.Items[0]
	if item.RepoName != "acme/api" || item.ScanCount != 2 || item.LatestScan == nil || item.LatestScan.ID != "scan-2" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestHandleAPIRepositoriesUnauthorized(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/api/repositories")
	api := seededAPI()
	api.scansErr = &configapi.APIError{Status: http.StatusUnauthorized, Message: "expired"}
	h := newSignedInHandler(t, c, api)

	if err := h.HandleAPIRepositories(c); err != nil {
		t.Fatalf("HandleAPIRepositories() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

type failingDeleteStore struct{}

func (failingDeleteStore) Delete(string) error { return errors.New("store offline") }
func (failingDeleteStore) Find(string) ([]byte, bool, error) { return nil, false, nil }
func (failingDeleteStore) Commit(string, []byte, time.Time) error { return nil }

func TestHandleAPIRepositoriesLogsDestroyFailure(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/api/repositories")
	api := seededAPI()
	api.scansErr = &configapi.APIError{Status: http.StatusUnauthorized, Message: "expired"}
	h := newSignedInHandler(t, c, api)
	h.Sessions.Store = failingDeleteStore{}
	var buf bytes.Buffer
	c.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	if err := h.HandleAPIRepositories(c); err != nil {
		t.Fatalf("HandleAPIRepositories() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if out := buf.String(); !strings.Contains(out, "session destroy failed") {
		t.Fatalf("log output = %q", out)
	}
}

func TestHandleHealthz(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/healthz")
	if err := HandleHealthz(c); err != nil {
		t.Fatalf("HandleHealthz() error = %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
