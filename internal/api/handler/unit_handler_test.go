package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

func TestUnitHandler_Register(t *testing.T) {
	stub := &stubDispatchService{
		registerUnitFn: func(ctx context.Context, in ports.RegisterUnitInput) (*domain.Unit, error) {
			if in.CallSign != "AMB-12" || in.Status != "" || in.CurrentFix == nil || in.CurrentFix.AccuracyMeters != 4 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Unit{ID: "u1", CallSign: in.CallSign, Status: domain.UnitActive, Availability: domain.AvailabilityAvailable, CurrentFix: in.CurrentFix}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/units", `{"call_sign":"AMB-12","current_fix":{"latitude":1,"longitude":2,"accuracy_m":4}}`, "op-1")

	if err := NewUnitHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp unitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "u1" || resp.Availability != "AVAILABLE" || resp.CurrentFix == nil {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUnitHandler_Register_Validation(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"call_sign":"AMB-1","status":"BROKEN"}`,
		`{"call_sign":"AMB-1","current_fix":{"latitude":0,"longitude":0,"accuracy_m":0}}`,
	} {
		c, _ := newContext(http.MethodPost, "/v1/units", body, "op-1")
		if err := NewUnitHandler(&stubDispatchService{}).Register(c); httpCode(err) != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: expected 422, got %v", body, err)
		}
	}
}

func TestUnitHandler_List(t *testing.T) {
	stub := &stubDispatchService{
		listUnitsFn: func(ctx context.Context, f domain.UnitFilter) ([]*domain.Unit, error) {
			if f.Availability != domain.AvailabilityAvailable || f.Status != domain.UnitActive {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []*domain.Unit{{ID: "u1"}, {ID: "u2"}}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/v1/units?status=ACTIVE&availability=AVAILABLE", "", "op-1")

	if err := NewUnitHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp unitListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 units, got %d", resp.Count)
	}
}

func TestUnitHandler_SetStatus(t *testing.T) {
	stub := &stubDispatchService{
		setUnitStatusFn: func(ctx context.Context, in ports.SetUnitStatusInput) (*domain.Unit, error) {
			if in.UnitID != "u1" || in.Availability != domain.AvailabilityOffDuty {
				t.Fatalf("unexpected input: %+v", in)
			}
			return nil, domain.ErrUnitEngaged
		},
	}
	c, _ := newContext(http.MethodPatch, "/v1/units/u1/status", `{"availability":"OFF_DUTY"}`, "op-1")
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := NewUnitHandler(stub).SetStatus(c); !errors.Is(err, domain.ErrUnitEngaged) {
		t.Fatalf("expected ErrUnitEngaged, got %v", err)
	}

	c, _ = newContext(http.MethodPatch, "/v1/units/u1/status", `{"availability":"EN_ROUTE"}`, "op-1")
	if err := NewUnitHandler(stub).SetStatus(c); httpCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for engaged availability, got %v", err)
	}
}

func TestUnitHandler_UpdateFix(t *testing.T) {
	stub := &stubDispatchService{
		updateUnitFixFn: func(ctx context.Context, unitID string, fix domain.Fix) (*domain.Unit, error) {
			if unitID != "u1" || fix.Latitude != 19.5 {
				t.Fatalf("unexpected args: %s %+v", unitID, fix)
			}
			return &domain.Unit{ID: unitID, CurrentFix: &fix}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/v1/units/u1/fix", `{"latitude":19.5,"longitude":-99.2,"accuracy_m":9}`, "op-1")
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := NewUnitHandler(stub).UpdateFix(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
