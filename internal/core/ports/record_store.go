package ports

import (
	"context"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

// EmergencyMutator edits a copy of an emergency. Returning an error aborts the
// write and leaves the stored record untouched.
type EmergencyMutator func(e *domain.Emergency) error

// UnitMutator edits a copy of a unit under the same rules as EmergencyMutator.
type UnitMutator func(u *domain.Unit) error

// AssignmentMutator edits an emergency and a unit together. The unit is nil
// when unitID was empty.
type AssignmentMutator func(e *domain.Emergency, u *domain.Unit) error

// RecordStore is the authoritative Emergency/Unit store. Every Put* call is an
// indivisible read-modify-write with respect to other calls touching the same
// records. Returned records are copies owned by the caller.
type RecordStore interface {
	CreateEmergency(ctx context.Context, e *domain.Emergency) error
	GetEmergency(ctx context.Context, id string) (*domain.Emergency, error)
	// ListEmergencies returns emergencies matching filter, in no particular order.
	ListEmergencies(ctx context.Context, filter domain.EmergencyFilter) ([]*domain.Emergency, error)
	PutEmergency(ctx context.Context, id string, mutate EmergencyMutator) (*domain.Emergency, error)

	CreateUnit(ctx context.Context, u *domain.Unit) error
	GetUnit(ctx context.Context, id string) (*domain.Unit, error)
	ListUnits(ctx context.Context, filter domain.UnitFilter) ([]*domain.Unit, error)
	PutUnit(ctx context.Context, id string, mutate UnitMutator) (*domain.Unit, error)

	// PutAssignment mutates an emergency and a unit as one atomic step. With an
	// empty unitID only the emergency is loaded and the mutator gets a nil unit.
	PutAssignment(ctx context.Context, emergencyID, unitID string, mutate AssignmentMutator) (*domain.Emergency, *domain.Unit, error)
}
