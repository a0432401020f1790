package domain

import "fmt"

// UnitStatus is the administrative state of a response unit.
type UnitStatus string

const (
	UnitActive      UnitStatus = "ACTIVE"
	UnitInactive    UnitStatus = "INACTIVE"
	UnitMaintenance UnitStatus = "MAINTENANCE"
)

// Valid reports whether s is a known unit status.
func (s UnitStatus) Valid() bool {
	return s == UnitActive || s == UnitInactive || s == UnitMaintenance
}

// Availability is the operational state of a response unit.
type Availability string

const (
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityEnRoute   Availability = "EN_ROUTE"
	AvailabilityOnScene   Availability = "ON_SCENE"
	AvailabilityOffDuty   Availability = "OFF_DUTY"
)

// Valid reports whether a is a known availability.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityEnRoute, AvailabilityOnScene, AvailabilityOffDuty:
		return true
	}
	return false
}

// Engaged reports whether the unit is working an emergency.
func (a Availability) Engaged() bool {
	return a == AvailabilityEnRoute || a == AvailabilityOnScene
}

// Unit is a response resource that serves one emergency at a time.
type Unit struct {
	ID                  string       `json:"id" bson:"_id"`
	CallSign            string       `json:"call_sign" bson:"call_sign"`
	Status              UnitStatus   `json:"status" bson:"status"`
	Availability        Availability `json:"availability" bson:"availability"`
	CurrentFix          *Fix         `json:"current_fix,omitempty" bson:"current_fix,omitempty"`
	AssignedEmergencyID *string      `json:"assigned_emergency_id,omitempty" bson:"assigned_emergency_id,omitempty"`
	Version             int64        `json:"version" bson:"version"`
}

// Clone returns a deep copy of the unit.
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	c := *u
	if u.CurrentFix != nil {
		f := *u.CurrentFix
		c.CurrentFix = &f
	}
	if u.AssignedEmergencyID != nil {
		id := *u.AssignedEmergencyID
		c.AssignedEmergencyID = &id
	}
	return &c
}

// Dispatchable reports whether the unit can take a new assignment.
func (u *Unit) Dispatchable() bool {
	return u.Status == UnitActive && u.Availability == AvailabilityAvailable && u.AssignedEmergencyID == nil
}

// CheckAssignmentInvariant verifies that availability agrees with the
// emergency back-reference.
func (u *Unit) CheckAssignmentInvariant() error {
	linked := u.AssignedEmergencyID != nil && *u.AssignedEmergencyID != ""
	if linked != u.Availability.Engaged() {
		return fmt.Errorf("unit %s: availability %s with assigned emergency=%t", u.ID, u.Availability, linked)
	}
	return nil
}
