package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLivenessAlwaysOK(t *testing.T) {
	checker := New(time.Second)
	checker.Register("store", func(ctx context.Context) error {
		return errors.New("database locked")
	})

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Errorf("liveness status = %d, want 200 even with failing checks", rec.Code)
	}
}

func TestReadinessAggregation(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]error
		wantStatus string
		wantCode   int
	}{
		{
			name:       "no checks registered",
			checks:     nil,
			wantStatus: "ready",
			wantCode:   200,
		},
		{
			name:       "all healthy",
			checks:     map[string]error{"store": nil, "audit": nil},
			wantStatus: "ready",
			wantCode:   200,
		},
		{
			name:       "one unhealthy degrades",
			checks:     map[string]error{"store": nil, "audit": errors.New("disk full")},
			wantStatus: "degraded",
			wantCode:   503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, err := range tt.checks {
				err := err
				checker.Register(name, func(ctx context.Context) error { return err })
			}

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest("GET", "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var status Status
			if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("checks = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestReadinessTimeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	status := checker.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded on timeout", status.Status)
	}
	if status.Checks["slow"].Status != "unhealthy" {
		t.Errorf("slow check = %+v", status.Checks["slow"])
	}
}

func TestReadinessRejectsPost(t *testing.T) {
	checker := New(time.Second)
	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest("POST", "/ready", nil))
	if rec.Code != 405 {
		t.Errorf("code = %d, want 405", rec.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.0", "abc123")(rec, httptest.NewRequest("GET", "/version", nil))

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" {
		t.Errorf("info = %+v", info)
	}
	if info.GoVersion == "" {
		t.Error("go version missing")
	}
}
