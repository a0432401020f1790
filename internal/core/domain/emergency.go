package domain

import (
	"fmt"
	"time"
)

// EmergencyKind classifies the request at intake.
type EmergencyKind string

const (
	KindCritical          EmergencyKind = "CRITICAL"
	KindUrgent            EmergencyKind = "URGENT"
	KindHomeVisit         EmergencyKind = "HOME_VISIT"
	KindScheduledTransfer EmergencyKind = "SCHEDULED_TRANSFER"
)

// Valid reports whether k is a known kind.
func (k EmergencyKind) Valid() bool {
	switch k {
	case KindCritical, KindUrgent, KindHomeVisit, KindScheduledTransfer:
		return true
	}
	return false
}

// Priority orders emergencies for the dispatcher. Lower rank is more urgent.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Rank returns the sort key of p; unknown priorities sort last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// EmergencyStatus represents the lifecycle state of an emergency.
type EmergencyStatus string

const (
	StatusPending   EmergencyStatus = "PENDING"
	StatusAssigned  EmergencyStatus = "ASSIGNED"
	StatusEnRoute   EmergencyStatus = "EN_ROUTE"
	StatusOnScene   EmergencyStatus = "ON_SCENE"
	StatusCompleted EmergencyStatus = "COMPLETED"
	StatusCancelled EmergencyStatus = "CANCELLED"
)

// validTransitions defines the allowed state machine transitions.
// PENDING -> ASSIGNED is only taken by the dispatch matcher.
var validTransitions = map[EmergencyStatus][]EmergencyStatus{
	StatusPending:  {StatusAssigned, StatusCancelled},
	StatusAssigned: {StatusEnRoute, StatusCancelled},
	StatusEnRoute:  {StatusOnScene, StatusCancelled},
	StatusOnScene:  {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s EmergencyStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusEnRoute, StatusOnScene, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s EmergencyStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HasUnit reports whether an emergency in this status must hold a unit.
func (s EmergencyStatus) HasUnit() bool {
	return s == StatusAssigned || s == StatusEnRoute || s == StatusOnScene
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s EmergencyStatus) CanTransitionTo(next EmergencyStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TimelineEvent is an append-only audit record of a status change.
type TimelineEvent struct {
	Label      string          `json:"label" bson:"label"`
	Detail     string          `json:"detail,omitempty" bson:"detail,omitempty"`
	OperatorID string          `json:"operator_id" bson:"operator_id"`
	From       EmergencyStatus `json:"from,omitempty" bson:"from,omitempty"`
	To         EmergencyStatus `json:"to" bson:"to"`
	OccurredAt time.Time       `json:"occurred_at" bson:"occurred_at"`
}

// Emergency is the core aggregate root.
type Emergency struct {
	ID                      string          `json:"id" bson:"_id"`
	Kind                    EmergencyKind   `json:"kind" bson:"kind"`
	Priority                Priority        `json:"priority" bson:"priority"`
	Status                  EmergencyStatus `json:"status" bson:"status"`
	Fix                     Fix             `json:"fix" bson:"fix"`
	PatientRef              string          `json:"patient_ref" bson:"patient_ref"`
	Description             string          `json:"description" bson:"description"`
	CreatedAt               time.Time       `json:"created_at" bson:"created_at"`
	AssignedUnitID          *string         `json:"assigned_unit_id,omitempty" bson:"assigned_unit_id,omitempty"`
	EstimatedArrivalMinutes *int            `json:"estimated_arrival_minutes,omitempty" bson:"estimated_arrival_minutes,omitempty"`
	Timeline                []TimelineEvent `json:"timeline" bson:"timeline"`
	Version                 int64           `json:"version" bson:"version"`
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (e *Emergency) Clone() *Emergency {
	if e == nil {
		return nil
	}
	c := *e
	if e.AssignedUnitID != nil {
		id := *e.AssignedUnitID
		c.AssignedUnitID = &id
	}
	if e.EstimatedArrivalMinutes != nil {
		m := *e.EstimatedArrivalMinutes
		c.EstimatedArrivalMinutes = &m
	}
	c.Timeline = make([]TimelineEvent, len(e.Timeline))
	copy(c.Timeline, e.Timeline)
	return &c
}

// Transition moves the emergency to next and appends exactly one timeline event.
func (e *Emergency) Transition(next EmergencyStatus, operatorID, detail string, at time.Time) error {
	if !e.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, e.Status, next)
	}
	prev := e.Status
	e.Status = next
	e.appendEvent(TimelineEvent{
		Label:      transitionLabel(next),
		Detail:     detail,
		OperatorID: operatorID,
		From:       prev,
		To:         next,
		OccurredAt: at,
	})
	return nil
}

func (e *Emergency) appendEvent(ev TimelineEvent) {
	e.Timeline = append(e.Timeline, ev)
}

// CheckAssignmentInvariant verifies that a unit is attached exactly when the
// status requires one.
func (e *Emergency) CheckAssignmentInvariant() error {
	hasUnit := e.AssignedUnitID != nil && *e.AssignedUnitID != ""
	if hasUnit != e.Status.HasUnit() {
		return fmt.Errorf("emergency %s: status %s with assigned unit=%t", e.ID, e.Status, hasUnit)
	}
	return nil
}

func transitionLabel(next EmergencyStatus) string {
	switch next {
	case StatusAssigned:
		return "Unit assigned"
	case StatusEnRoute:
		return "Unit en route"
	case StatusOnScene:
		return "Unit on scene"
	case StatusCompleted:
		return "Emergency completed"
	case StatusCancelled:
		return "Emergency cancelled"
	default:
		return "Status changed"
	}
}
