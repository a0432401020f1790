package handler

import "time"

type registerUnitRequest struct {
	CallSign   string      `json:"call_sign"   validate:"required,max=64"`
	Status     string      `json:"status"      validate:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE"`
	CurrentFix *fixRequest `json:"current_fix" validate:"omitempty"`
}

type listUnitsQuery struct {
	Status       string `query:"status"`
	Availability string `query:"availability"`
}

type setUnitStatusRequest struct {
	Status       string `json:"status"       validate:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE"`
	Availability string `json:"availability" validate:"omitempty,oneof=AVAILABLE OFF_DUTY"`
}

type unitResponse struct {
	ID                  string       `json:"id"`
	CallSign            string       `json:"call_sign"`
	Status              string       `json:"status"`
	Availability        string       `json:"availability"`
	CurrentFix          *fixResponse `json:"current_fix,omitempty"`
	AssignedEmergencyID *string      `json:"assigned_emergency_id,omitempty"`
}

type unitListResponse struct {
	Items []unitResponse `json:"items"`
	Count int            `json:"count"`
}

// --- Location ---

type requestFixRequest struct {
	SourceID     string `json:"source_id"     validate:"required"`
	HighAccuracy bool   `json:"high_accuracy"`
	TimeoutMs    int    `json:"timeout_ms"    validate:"gte=0"`
	MaxAgeMs     int    `json:"max_age_ms"    validate:"gte=0"`
}

type positionSampleRequest struct {
	Latitude       float64   `json:"latitude"   validate:"gte=-90,lte=90"`
	Longitude      float64   `json:"longitude"  validate:"gte=-180,lte=180"`
	AccuracyMeters float64   `json:"accuracy_m" validate:"gt=0"`
	Altitude       *float64  `json:"altitude"`
	Heading        *float64  `json:"heading"`
	SpeedMps       *float64  `json:"speed_mps"`
	CapturedAt     time.Time `json:"captured_at"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}
