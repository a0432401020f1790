package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type fixRequest struct {
	Latitude       float64   `json:"latitude"     validate:"gte=-90,lte=90"`
	Longitude      float64   `json:"longitude"    validate:"gte=-180,lte=180"`
	AccuracyMeters float64   `json:"accuracy_m"   validate:"gt=0"`
	SamplesUsed    int       `json:"samples_used" validate:"gte=0"`
	ProducedAt     time.Time `json:"produced_at"`
	Degraded       bool      `json:"degraded"`
}

type createEmergencyRequest struct {
	Kind        string     `json:"kind"        validate:"required,oneof=CRITICAL URGENT HOME_VISIT SCHEDULED_TRANSFER"`
	Priority    string     `json:"priority"    validate:"required,oneof=HIGH MEDIUM LOW"`
	Fix         fixRequest `json:"fix"`
	PatientRef  string     `json:"patient_ref" validate:"max=128"`
	Description string     `json:"description" validate:"max=2000"`
}

type listEmergenciesQuery struct {
	Priority string `query:"priority"`
	Status   string `query:"status"`
	Window   string `query:"window"`
}

type assignUnitRequest struct {
	UnitID string `json:"unit_id" validate:"required"`
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ASSIGNED EN_ROUTE ON_SCENE COMPLETED CANCELLED"`
	Detail string `json:"detail" validate:"max=500"`
}

type cancelEmergencyRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type setEtaRequest struct {
	Minutes *int `json:"minutes" validate:"required"`
}

// --- Response types ---
// Response-only types owned by the transport layer so the JSON contract is
// not coupled to domain changes.

type fixResponse struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_m"`
	SamplesUsed    int       `json:"samples_used"`
	ProducedAt     time.Time `json:"produced_at"`
	Degraded       bool      `json:"degraded,omitempty"`
}

type timelineEventResponse struct {
	Label      string    `json:"label"`
	Detail     string    `json:"detail,omitempty"`
	OperatorID string    `json:"operator_id"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

type emergencyLinks struct {
	Self string `json:"self"`
	Unit string `json:"unit,omitempty"`
}

type emergencyResponse struct {
	ID                      string                  `json:"id"`
	Kind                    string                  `json:"kind"`
	Priority                string                  `json:"priority"`
	Status                  string                  `json:"status"`
	Fix                     fixResponse             `json:"fix"`
	PatientRef              string                  `json:"patient_ref"`
	Description             string                  `json:"description"`
	CreatedAt               time.Time               `json:"created_at"`
	AssignedUnitID          *string                 `json:"assigned_unit_id,omitempty"`
	EstimatedArrivalMinutes *int                    `json:"estimated_arrival_minutes,omitempty"`
	Timeline                []timelineEventResponse `json:"timeline"`
	Links                   emergencyLinks          `json:"_links"`
}

type emergencyListResponse struct {
	Items []emergencyResponse `json:"items"`
	Count int                 `json:"count"`
}

type assignmentResponse struct {
	Emergency emergencyResponse `json:"emergency"`
	Unit      unitResponse      `json:"unit"`
}
