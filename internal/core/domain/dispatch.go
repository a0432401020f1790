package domain

import (
	"fmt"
	"time"
)

// Assign binds u to e as one dispatcher step: the emergency goes
// PENDING -> ASSIGNED -> EN_ROUTE and the unit goes EN_ROUTE. A single
// timeline event records the step. Both records are mutated in place, so
// callers must pass copies they own.
func Assign(e *Emergency, u *Unit, operatorID string, at time.Time) error {
	if err := CheckAssignable(e, u); err != nil {
		return err
	}

	unitID := u.ID
	emergencyID := e.ID
	prev := e.Status

	e.Status = StatusEnRoute
	e.AssignedUnitID = &unitID
	e.appendEvent(TimelineEvent{
		Label:      transitionLabel(StatusAssigned),
		Detail:     fmt.Sprintf("unit %s dispatched (%s -> %s -> %s)", unitName(u), prev, StatusAssigned, StatusEnRoute),
		OperatorID: operatorID,
		From:       prev,
		To:         StatusEnRoute,
		OccurredAt: at,
	})

	u.Availability = AvailabilityEnRoute
	u.AssignedEmergencyID = &emergencyID
	return nil
}

// CheckAssignable evaluates the assignment preconditions without mutating.
func CheckAssignable(e *Emergency, u *Unit) error {
	if e.Status != StatusPending {
		return fmt.Errorf("%w (status %s)", ErrEmergencyNotPending, e.Status)
	}
	if !StatusPending.CanTransitionTo(StatusAssigned) || !StatusAssigned.CanTransitionTo(StatusEnRoute) {
		return ErrInvalidTransition
	}
	if !u.Dispatchable() {
		return fmt.Errorf("%w (status %s, availability %s)", ErrUnitNotAvailable, u.Status, u.Availability)
	}
	return nil
}

// Advance applies an operator-driven status change. u is the unit assigned to
// e, or nil when there is none. Leaving the assigned states releases the unit.
func Advance(e *Emergency, u *Unit, next EmergencyStatus, operatorID, detail string, at time.Time) error {
	if next == StatusAssigned {
		return fmt.Errorf("%w: units are assigned through dispatch", ErrInvalidTransition)
	}
	if err := e.Transition(next, operatorID, detail, at); err != nil {
		return err
	}

	switch next {
	case StatusOnScene:
		if u != nil {
			u.Availability = AvailabilityOnScene
		}
	case StatusCompleted, StatusCancelled:
		Release(e, u)
	}
	return nil
}

// Release detaches the unit from the emergency on both sides.
func Release(e *Emergency, u *Unit) {
	e.AssignedUnitID = nil
	if u == nil || u.AssignedEmergencyID == nil || *u.AssignedEmergencyID != e.ID {
		return
	}
	u.AssignedEmergencyID = nil
	u.Availability = AvailabilityAvailable
}

func unitName(u *Unit) string {
	if u.CallSign != "" {
		return u.CallSign
	}
	return u.ID
}
