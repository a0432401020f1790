package handler

import (
	"time"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

func toFix(r fixRequest) domain.Fix {
	return domain.Fix{
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		AccuracyMeters: r.AccuracyMeters,
		SamplesUsed:    r.SamplesUsed,
		ProducedAt:     r.ProducedAt,
		Degraded:       r.Degraded,
	}
}

func toCreateEmergencyInput(r createEmergencyRequest, operatorID, idempotencyKey string) ports.CreateEmergencyInput {
	return ports.CreateEmergencyInput{
		Kind:           domain.EmergencyKind(r.Kind),
		Priority:       domain.Priority(r.Priority),
		Fix:            toFix(r.Fix),
		PatientRef:     r.PatientRef,
		Description:    r.Description,
		OperatorID:     operatorID,
		IdempotencyKey: idempotencyKey,
	}
}

func toRegisterUnitInput(r registerUnitRequest) ports.RegisterUnitInput {
	in := ports.RegisterUnitInput{
		CallSign: r.CallSign,
		Status:   domain.UnitStatus(r.Status),
	}
	if r.CurrentFix != nil {
		fix := toFix(*r.CurrentFix)
		in.CurrentFix = &fix
	}
	return in
}

func toPositionSample(r positionSampleRequest, received time.Time) domain.PositionSample {
	s := domain.PositionSample{
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		AccuracyMeters: r.AccuracyMeters,
		Altitude:       r.Altitude,
		Heading:        r.Heading,
		SpeedMps:       r.SpeedMps,
		CapturedAt:     r.CapturedAt,
	}
	if s.CapturedAt.IsZero() {
		s.CapturedAt = received
	}
	return s
}

func toFixResponse(f domain.Fix) fixResponse {
	return fixResponse{
		Latitude:       f.Latitude,
		Longitude:      f.Longitude,
		AccuracyMeters: f.AccuracyMeters,
		SamplesUsed:    f.SamplesUsed,
		ProducedAt:     f.ProducedAt,
		Degraded:       f.Degraded,
	}
}

func toEmergencyResponse(e *domain.Emergency) emergencyResponse {
	timeline := make([]timelineEventResponse, 0, len(e.Timeline))
	for _, ev := range e.Timeline {
		timeline = append(timeline, timelineEventResponse{
			Label:      ev.Label,
			Detail:     ev.Detail,
			OperatorID: ev.OperatorID,
			From:       string(ev.From),
			To:         string(ev.To),
			OccurredAt: ev.OccurredAt,
		})
	}

	links := emergencyLinks{Self: "/v1/emergencies/" + e.ID}
	if e.AssignedUnitID != nil {
		links.Unit = "/v1/units/" + *e.AssignedUnitID
	}

	return emergencyResponse{
		ID:                      e.ID,
		Kind:                    string(e.Kind),
		Priority:                string(e.Priority),
		Status:                  string(e.Status),
		Fix:                     toFixResponse(e.Fix),
		PatientRef:              e.PatientRef,
		Description:             e.Description,
		CreatedAt:               e.CreatedAt,
		AssignedUnitID:          e.AssignedUnitID,
		EstimatedArrivalMinutes: e.EstimatedArrivalMinutes,
		Timeline:                timeline,
		Links:                   links,
	}
}

func toEmergencyListResponse(list []*domain.Emergency) emergencyListResponse {
	items := make([]emergencyResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toEmergencyResponse(e))
	}
	return emergencyListResponse{Items: items, Count: len(items)}
}

func toUnitResponse(u *domain.Unit) unitResponse {
	resp := unitResponse{
		ID:                  u.ID,
		CallSign:            u.CallSign,
		Status:              string(u.Status),
		Availability:        string(u.Availability),
		AssignedEmergencyID: u.AssignedEmergencyID,
	}
	if u.CurrentFix != nil {
		fix := toFixResponse(*u.CurrentFix)
		resp.CurrentFix = &fix
	}
	return resp
}

func toUnitListResponse(list []*domain.Unit) unitListResponse {
	items := make([]unitResponse, 0, len(list))
	for _, u := range list {
		items = append(items, toUnitResponse(u))
	}
	return unitListResponse{Items: items, Count: len(items)}
}
