package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type stubPinger struct {
	name string
	err  error
}

func (p stubPinger) Name() string { return p.name }
func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", "", "")

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		deps   []Pinger
		code   int
		status string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"all healthy", []Pinger{stubPinger{name: "mongo"}, stubPinger{name: "redis"}}, http.StatusOK, "ok"},
		{"redis down", []Pinger{stubPinger{name: "mongo"}, stubPinger{name: "redis", err: errors.New("refused")}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/health/ready", "", "")

			if err := NewHealthHandler(tt.deps...).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.status || len(resp.Dependencies) != len(tt.deps) {
				t.Fatalf("unexpected payload: %+v", resp)
			}
		})
	}
}
