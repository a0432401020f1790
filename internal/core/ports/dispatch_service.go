package ports

import (
	"context"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

// CreateEmergencyInput carries all data needed to register a new emergency.
type CreateEmergencyInput struct {
	Kind        domain.EmergencyKind
	Priority    domain.Priority
	Fix         domain.Fix
	PatientRef  string
	Description string
	OperatorID  string
	// IdempotencyKey makes retried intake requests return the first emergency.
	IdempotencyKey string
}

// CreateEmergencyResult is returned by CreateEmergency.
type CreateEmergencyResult struct {
	Emergency *domain.Emergency
	// AlreadyExisted is true when the Idempotency-Key matched an existing emergency.
	AlreadyExisted bool
}

// ListEmergenciesInput carries the optional filters of the dispatcher board.
type ListEmergenciesInput struct {
	Priority domain.Priority
	Status   domain.EmergencyStatus
	Window   domain.TimeWindow
}

// AssignmentProposal is the read-only view shown before a dispatcher confirms.
type AssignmentProposal struct {
	Emergency *domain.Emergency
	Unit      *domain.Unit
}

// AssignmentResult holds both records after a committed assignment.
type AssignmentResult struct {
	Emergency *domain.Emergency
	Unit      *domain.Unit
}

// RegisterUnitInput carries the data for a new response unit.
type RegisterUnitInput struct {
	CallSign   string
	Status     domain.UnitStatus
	CurrentFix *domain.Fix
}

// SetUnitStatusInput changes a unit's administrative state and/or duty state.
// Empty fields are left unchanged.
type SetUnitStatusInput struct {
	UnitID       string
	Status       domain.UnitStatus
	Availability domain.Availability
}

// DispatchService defines the dispatcher-facing operations.
type DispatchService interface {
	CreateEmergency(ctx context.Context, input CreateEmergencyInput) (*CreateEmergencyResult, error)
	GetEmergency(ctx context.Context, id string) (*domain.Emergency, error)
	ListPending(ctx context.Context, input ListEmergenciesInput) ([]*domain.Emergency, error)

	ProposeAssignment(ctx context.Context, emergencyID, unitID string) (*AssignmentProposal, error)
	AssignUnit(ctx context.Context, emergencyID, unitID, operatorID string) (*AssignmentResult, error)
	AdvanceStatus(ctx context.Context, emergencyID string, target domain.EmergencyStatus, operatorID, detail string) (*domain.Emergency, error)
	Cancel(ctx context.Context, emergencyID, operatorID, reason string) (*domain.Emergency, error)
	SetEta(ctx context.Context, emergencyID string, minutes int) (*domain.Emergency, error)

	RegisterUnit(ctx context.Context, input RegisterUnitInput) (*domain.Unit, error)
	GetUnit(ctx context.Context, id string) (*domain.Unit, error)
	ListUnits(ctx context.Context, filter domain.UnitFilter) ([]*domain.Unit, error)
	SetUnitStatus(ctx context.Context, input SetUnitStatusInput) (*domain.Unit, error)
	UpdateUnitFix(ctx context.Context, unitID string, fix domain.Fix) (*domain.Unit, error)
}

// LocationService acquires a position fix for a caller.
type LocationService interface {
	RequestFix(ctx context.Context, opts domain.SampleOptions) (*domain.Fix, error)
}
