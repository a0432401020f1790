package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ambulink/dispatch-core/internal/api/middleware"
	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

type stubDispatchService struct {
	createFn        func(ctx context.Context, in ports.CreateEmergencyInput) (*ports.CreateEmergencyResult, error)
	getFn           func(ctx context.Context, id string) (*domain.Emergency, error)
	listFn          func(ctx context.Context, in ports.ListEmergenciesInput) ([]*domain.Emergency, error)
	proposeFn       func(ctx context.Context, emergencyID, unitID string) (*ports.AssignmentProposal, error)
	assignFn        func(ctx context.Context, emergencyID, unitID, operatorID string) (*ports.AssignmentResult, error)
	advanceFn       func(ctx context.Context, emergencyID string, target domain.EmergencyStatus, operatorID, detail string) (*domain.Emergency, error)
	cancelFn        func(ctx context.Context, emergencyID, operatorID, reason string) (*domain.Emergency, error)
	setEtaFn        func(ctx context.Context, emergencyID string, minutes int) (*domain.Emergency, error)
	registerUnitFn  func(ctx context.Context, in ports.RegisterUnitInput) (*domain.Unit, error)
	getUnitFn       func(ctx context.Context, id string) (*domain.Unit, error)
	listUnitsFn     func(ctx context.Context, f domain.UnitFilter) ([]*domain.Unit, error)
	setUnitStatusFn func(ctx context.Context, in ports.SetUnitStatusInput) (*domain.Unit, error)
	updateUnitFixFn func(ctx context.Context, unitID string, fix domain.Fix) (*domain.Unit, error)
}

func (s *stubDispatchService) CreateEmergency(ctx context.Context, in ports.CreateEmergencyInput) (*ports.CreateEmergencyResult, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, in)
}

func (s *stubDispatchService) GetEmergency(ctx context.Context, id string) (*domain.Emergency, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, id)
}

func (s *stubDispatchService) ListPending(ctx context.Context, in ports.ListEmergenciesInput) ([]*domain.Emergency, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, in)
}

func (s *stubDispatchService) ProposeAssignment(ctx context.Context, emergencyID, unitID string) (*ports.AssignmentProposal, error) {
	if s.proposeFn == nil {
		return nil, errNotStubbed
	}
	return s.proposeFn(ctx, emergencyID, unitID)
}

func (s *stubDispatchService) AssignUnit(ctx context.Context, emergencyID, unitID, operatorID string) (*ports.AssignmentResult, error) {
	if s.assignFn == nil {
		return nil, errNotStubbed
	}
	return s.assignFn(ctx, emergencyID, unitID, operatorID)
}

func (s *stubDispatchService) AdvanceStatus(ctx context.Context, emergencyID string, target domain.EmergencyStatus, operatorID, detail string) (*domain.Emergency, error) {
	if s.advanceFn == nil {
		return nil, errNotStubbed
	}
	return s.advanceFn(ctx, emergencyID, target, operatorID, detail)
}

func (s *stubDispatchService) Cancel(ctx context.Context, emergencyID, operatorID, reason string) (*domain.Emergency, error) {
	if s.cancelFn == nil {
		return nil, errNotStubbed
	}
	return s.cancelFn(ctx, emergencyID, operatorID, reason)
}

func (s *stubDispatchService) SetEta(ctx context.Context, emergencyID string, minutes int) (*domain.Emergency, error) {
	if s.setEtaFn == nil {
		return nil, errNotStubbed
	}
	return s.setEtaFn(ctx, emergencyID, minutes)
}

func (s *stubDispatchService) RegisterUnit(ctx context.Context, in ports.RegisterUnitInput) (*domain.Unit, error) {
	if s.registerUnitFn == nil {
		return nil, errNotStubbed
	}
	return s.registerUnitFn(ctx, in)
}

func (s *stubDispatchService) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	if s.getUnitFn == nil {
		return nil, errNotStubbed
	}
	return s.getUnitFn(ctx, id)
}

func (s *stubDispatchService) ListUnits(ctx context.Context, f domain.UnitFilter) ([]*domain.Unit, error) {
	if s.listUnitsFn == nil {
		return nil, errNotStubbed
	}
	return s.listUnitsFn(ctx, f)
}

func (s *stubDispatchService) SetUnitStatus(ctx context.Context, in ports.SetUnitStatusInput) (*domain.Unit, error) {
	if s.setUnitStatusFn == nil {
		return nil, errNotStubbed
	}
	return s.setUnitStatusFn(ctx, in)
}

func (s *stubDispatchService) UpdateUnitFix(ctx context.Context, unitID string, fix domain.Fix) (*domain.Unit, error) {
	if s.updateUnitFixFn == nil {
		return nil, errNotStubbed
	}
	return s.updateUnitFixFn(ctx, unitID, fix)
}

// newContext builds an echo context with the validator installed and the
// operator identity set as the Auth middleware would.
func newContext(method, target, body, operator string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if operator != "" {
		c.Set(middleware.OperatorIDKey, operator)
	}
	return c, rec
}

func httpCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}
