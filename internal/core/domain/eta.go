package domain

import "fmt"

// ETA bounds in minutes, inclusive.
const (
	MinEtaMinutes = 1
	MaxEtaMinutes = 120
)

// ValidateEta checks minutes against the accepted range.
func ValidateEta(minutes int) error {
	if minutes < MinEtaMinutes || minutes > MaxEtaMinutes {
		return fmt.Errorf("%w: eta %d not in [%d, %d]", ErrOutOfRange, minutes, MinEtaMinutes, MaxEtaMinutes)
	}
	return nil
}

// SetEta records a dispatcher-declared arrival estimate, overwriting any
// previous value. Only assigned or en-route emergencies accept one.
func (e *Emergency) SetEta(minutes int) error {
	if err := ValidateEta(minutes); err != nil {
		return err
	}
	if e.AssignedUnitID == nil || (e.Status != StatusAssigned && e.Status != StatusEnRoute) {
		return fmt.Errorf("%w (status %s)", ErrNotAssigned, e.Status)
	}
	e.EstimatedArrivalMinutes = &minutes
	return nil
}
