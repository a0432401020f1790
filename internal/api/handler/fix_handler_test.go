package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

type stubLocationService struct {
	requestFn func(ctx context.Context, opts domain.SampleOptions) (*domain.Fix, error)
}

func (s *stubLocationService) RequestFix(ctx context.Context, opts domain.SampleOptions) (*domain.Fix, error) {
	return s.requestFn(ctx, opts)
}

type stubReporter struct {
	sourceID string
	sample   domain.PositionSample
	err      error
}

func (s *stubReporter) Report(ctx context.Context, sourceID string, sample domain.PositionSample) error {
	s.sourceID, s.sample = sourceID, sample
	return s.err
}

func TestFixHandler_Request(t *testing.T) {
	loc := &stubLocationService{
		requestFn: func(ctx context.Context, opts domain.SampleOptions) (*domain.Fix, error) {
			if opts.SourceID != "caller-1" || !opts.HighAccuracy || opts.Timeout != 3*time.Second || opts.MaxAge != 0 {
				t.Fatalf("unexpected options: %+v", opts)
			}
			return &domain.Fix{Latitude: 1, Longitude: 2, AccuracyMeters: 4.5, SamplesUsed: 3, Degraded: true}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/fixes", `{"source_id":"caller-1","high_accuracy":true,"timeout_ms":3000}`, "op-1")

	if err := NewFixHandler(loc, nil).Request(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp fixResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.SamplesUsed != 3 || !resp.Degraded {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestFixHandler_Request_PropagatesLocationError(t *testing.T) {
	loc := &stubLocationService{
		requestFn: func(ctx context.Context, opts domain.SampleOptions) (*domain.Fix, error) {
			return nil, domain.ErrTimedOut
		},
	}
	c, _ := newContext(http.MethodPost, "/v1/fixes", `{"source_id":"caller-1"}`, "op-1")

	if err := NewFixHandler(loc, nil).Request(c); !errors.Is(err, domain.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
}

func TestFixHandler_Report(t *testing.T) {
	rep := &stubReporter{}
	h := NewFixHandler(nil, rep)
	fixed := time.Date(2026, 3, 3, 3, 3, 3, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	c, rec := newContext(http.MethodPost, "/v1/locations/amb-1/samples", `{"latitude":10,"longitude":20,"accuracy_m":7}`, "op-1")
	c.SetParamNames("source_id")
	c.SetParamValues("amb-1")

	if err := h.Report(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if rep.sourceID != "amb-1" || !rep.sample.CapturedAt.Equal(fixed) || rep.sample.AccuracyMeters != 7 {
		t.Fatalf("unexpected report: %s %+v", rep.sourceID, rep.sample)
	}
}

func TestFixHandler_Report_Unsupported(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/v1/locations/amb-1/samples", `{"latitude":10,"longitude":20,"accuracy_m":7}`, "op-1")

	if err := NewFixHandler(nil, nil).Report(c); !errors.Is(err, domain.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
