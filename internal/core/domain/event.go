package domain

import "time"

// DispatchEventType names what happened to a record.
type DispatchEventType string

const (
	EventEmergencyCreated DispatchEventType = "emergency.created"
	EventStatusChanged    DispatchEventType = "emergency.status_changed"
	EventUnitAssigned     DispatchEventType = "emergency.unit_assigned"
	EventEtaSet           DispatchEventType = "emergency.eta_set"
	EventUnitUpdated      DispatchEventType = "unit.updated"
)

// DispatchEvent is published after a mutation has been committed to the store.
// Consumers re-read the store for authoritative state.
type DispatchEvent struct {
	Type        DispatchEventType `json:"type" bson:"type"`
	EmergencyID string            `json:"emergency_id,omitempty" bson:"emergency_id,omitempty"`
	UnitID      string            `json:"unit_id,omitempty" bson:"unit_id,omitempty"`
	Status      EmergencyStatus   `json:"status,omitempty" bson:"status,omitempty"`
	OperatorID  string            `json:"operator_id,omitempty" bson:"operator_id,omitempty"`
	Detail      string            `json:"detail,omitempty" bson:"detail,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at" bson:"occurred_at"`
}

// Key returns the ordering key: events sharing a key are delivered in order.
func (e DispatchEvent) Key() string {
	if e.EmergencyID != "" {
		return e.EmergencyID
	}
	return e.UnitID
}
