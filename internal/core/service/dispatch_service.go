package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
	"github.com/ambulink/dispatch-core/internal/pkg/metrics"
)

// maxUnitRebinds bounds how often AdvanceStatus re-reads an emergency whose
// assigned unit changed between the lookup and the atomic write.
const maxUnitRebinds = 3

var errUnitRebound = errors.New("assigned unit changed")

// DispatchService implements the dispatcher-facing operations on top of a
// RecordStore. Every mutation is a single store call, so preconditions are
// checked and written atomically.
type DispatchService struct {
	store    ports.RecordStore
	idem     ports.IdempotencyStore
	events   ports.EventPublisher
	location *time.Location
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger
}

var _ ports.DispatchService = (*DispatchService)(nil)

// NewDispatchService wires the service. idem and events may be nil; loc sets
// the zone used for the "today" window and defaults to UTC.
func NewDispatchService(
	store ports.RecordStore,
	idem ports.IdempotencyStore,
	events ports.EventPublisher,
	loc *time.Location,
	logger zerolog.Logger,
) *DispatchService {
	if loc == nil {
		loc = time.UTC
	}
	return &DispatchService{
		store:    store,
		idem:     idem,
		events:   events,
		location: loc,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger.With().Str("component", "dispatch").Logger(),
	}
}

// CreateEmergency registers a PENDING emergency. A repeated IdempotencyKey
// returns the emergency created by the first request.
func (s *DispatchService) CreateEmergency(ctx context.Context, in ports.CreateEmergencyInput) (*ports.CreateEmergencyResult, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("create emergency: %w: kind %q", domain.ErrInvalidInput, in.Kind)
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("create emergency: %w: priority %q", domain.ErrInvalidInput, in.Priority)
	}
	if !in.Fix.Valid() {
		return nil, fmt.Errorf("create emergency: %w: fix coordinates", domain.ErrInvalidInput)
	}

	id := s.newID()

	if in.IdempotencyKey != "" && s.idem != nil {
		existingID, reserved, err := s.idem.Reserve(ctx, in.IdempotencyKey, id)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency check failed, creating anyway")
		case !reserved:
			existing, getErr := s.store.GetEmergency(ctx, existingID)
			if errors.Is(getErr, domain.ErrNotFound) {
				return nil, fmt.Errorf("create emergency: %w: intake %s still in progress", domain.ErrVersionConflict, in.IdempotencyKey)
			}
			if getErr != nil {
				return nil, fmt.Errorf("create emergency: %w", getErr)
			}
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("emergency_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateEmergencyResult{Emergency: existing, AlreadyExisted: true}, nil
		}
	}

	now := s.now().UTC()
	e := &domain.Emergency{
		ID:          id,
		Kind:        in.Kind,
		Priority:    in.Priority,
		Status:      domain.StatusPending,
		Fix:         in.Fix,
		PatientRef:  in.PatientRef,
		Description: in.Description,
		CreatedAt:   now,
		Timeline:    []domain.TimelineEvent{},
	}

	if err := s.store.CreateEmergency(ctx, e); err != nil {
		if in.IdempotencyKey != "" && s.idem != nil {
			if relErr := s.idem.Release(context.WithoutCancel(ctx), in.IdempotencyKey); relErr != nil {
				s.logger.Warn().Err(relErr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		s.logger.Error().Err(err).Msg("failed to create emergency")
		return nil, fmt.Errorf("create emergency: %w", cancelled(err))
	}

	metrics.EmergenciesCreatedTotal.WithLabelValues(string(e.Priority)).Inc()
	s.logger.Info().
		Str("emergency_id", e.ID).
		Str("kind", string(e.Kind)).
		Str("priority", string(e.Priority)).
		Float64("accuracy_m", e.Fix.AccuracyMeters).
		Msg("emergency created")

	s.publish(domain.DispatchEvent{
		Type:        domain.EventEmergencyCreated,
		EmergencyID: e.ID,
		Status:      e.Status,
		OperatorID:  in.OperatorID,
		OccurredAt:  now,
	})
	return &ports.CreateEmergencyResult{Emergency: e}, nil
}

// GetEmergency returns a single emergency.
func (s *DispatchService) GetEmergency(ctx context.Context, id string) (*domain.Emergency, error) {
	e, err := s.store.GetEmergency(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get emergency: %w", cancelled(err))
	}
	return e, nil
}

// ListPending returns the dispatcher board ranked by priority then age. With
// no status filter only PENDING emergencies are listed.
func (s *DispatchService) ListPending(ctx context.Context, in ports.ListEmergenciesInput) ([]*domain.Emergency, error) {
	if in.Priority != "" && !in.Priority.Valid() {
		return nil, fmt.Errorf("list emergencies: %w: priority %q", domain.ErrInvalidInput, in.Priority)
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("list emergencies: %w: status %q", domain.ErrInvalidInput, in.Status)
	}
	if !in.Window.Valid() {
		return nil, fmt.Errorf("list emergencies: %w: window %q", domain.ErrInvalidInput, in.Window)
	}

	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	filter := domain.EmergencyFilter{
		Priority: in.Priority,
		Statuses: []domain.EmergencyStatus{status},
		Window:   in.Window,
		Now:      s.now().In(s.location),
	}

	list, err := s.store.ListEmergencies(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list emergencies: %w", cancelled(err))
	}
	return domain.Rank(list), nil
}

// ProposeAssignment checks the assignment preconditions without writing. The
// dispatcher confirms by calling AssignUnit, which checks them again atomically.
func (s *DispatchService) ProposeAssignment(ctx context.Context, emergencyID, unitID string) (*ports.AssignmentProposal, error) {
	e, err := s.store.GetEmergency(ctx, emergencyID)
	if err != nil {
		return nil, fmt.Errorf("propose assignment: %w", cancelled(err))
	}
	u, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("propose assignment: %w", cancelled(err))
	}
	if err := domain.CheckAssignable(e, u); err != nil {
		return nil, fmt.Errorf("propose assignment: %w", err)
	}
	return &ports.AssignmentProposal{Emergency: e, Unit: u}, nil
}

// AssignUnit dispatches unitID to emergencyID in one atomic step.
func (s *DispatchService) AssignUnit(ctx context.Context, emergencyID, unitID, operatorID string) (*ports.AssignmentResult, error) {
	if operatorID == "" {
		return nil, fmt.Errorf("assign unit: %w: operator id required", domain.ErrInvalidInput)
	}
	if unitID == "" {
		return nil, fmt.Errorf("assign unit: %w: unit id required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("cancelled").Inc()
		return nil, fmt.Errorf("assign unit: %w", cancelled(err))
	}

	now := s.now().UTC()
	e, u, err := s.store.PutAssignment(ctx, emergencyID, unitID, func(e *domain.Emergency, u *domain.Unit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return domain.Assign(e, u, operatorID, now)
	})
	if err != nil {
		err = cancelled(err)
		metrics.AssignmentsTotal.WithLabelValues(assignmentResult(err)).Inc()
		s.logger.Info().Err(err).Str("emergency_id", emergencyID).Str("unit_id", unitID).Msg("assignment rejected")
		return nil, fmt.Errorf("assign unit: %w", err)
	}

	metrics.AssignmentsTotal.WithLabelValues("assigned").Inc()
	metrics.TransitionsTotal.WithLabelValues(string(e.Status)).Inc()
	s.logger.Info().
		Str("emergency_id", e.ID).
		Str("unit_id", u.ID).
		Str("operator_id", operatorID).
		Msg("unit assigned")

	s.publish(domain.DispatchEvent{
		Type:        domain.EventUnitAssigned,
		EmergencyID: e.ID,
		UnitID:      u.ID,
		Status:      e.Status,
		OperatorID:  operatorID,
		OccurredAt:  now,
	})
	return &ports.AssignmentResult{Emergency: e, Unit: u}, nil
}

// AdvanceStatus applies an operator-driven lifecycle transition. Terminal
// transitions release the assigned unit in the same atomic step.
func (s *DispatchService) AdvanceStatus(ctx context.Context, emergencyID string, target domain.EmergencyStatus, operatorID, detail string) (*domain.Emergency, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("advance status: %w: status %q", domain.ErrInvalidInput, target)
	}
	if operatorID == "" {
		return nil, fmt.Errorf("advance status: %w: operator id required", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	var (
		e, prev *domain.Emergency
		u       *domain.Unit
		err     error
	)
	for attempt := 0; attempt < maxUnitRebinds; attempt++ {
		if prev, err = s.store.GetEmergency(ctx, emergencyID); err != nil {
			return nil, fmt.Errorf("advance status: %w", cancelled(err))
		}
		unitID := assignedUnit(prev)

		e, u, err = s.store.PutAssignment(ctx, emergencyID, unitID, func(e *domain.Emergency, u *domain.Unit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if assignedUnit(e) != unitID {
				return errUnitRebound
			}
			return domain.Advance(e, u, target, operatorID, detail, now)
		})
		if !errors.Is(err, errUnitRebound) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, errUnitRebound) {
			err = domain.ErrVersionConflict
		}
		return nil, fmt.Errorf("advance status: %w", cancelled(err))
	}

	metrics.TransitionsTotal.WithLabelValues(string(e.Status)).Inc()
	log := s.logger.Info().
		Str("emergency_id", e.ID).
		Str("from", string(prev.Status)).
		Str("to", string(e.Status)).
		Str("operator_id", operatorID)
	if u != nil {
		log = log.Str("unit_id", u.ID)
	}
	log.Msg("emergency status changed")

	ev := domain.DispatchEvent{
		Type:        domain.EventStatusChanged,
		EmergencyID: e.ID,
		Status:      e.Status,
		OperatorID:  operatorID,
		Detail:      detail,
		OccurredAt:  now,
	}
	if u != nil {
		ev.UnitID = u.ID
	}
	s.publish(ev)
	return e, nil
}

// Cancel moves a non-terminal emergency to CANCELLED.
func (s *DispatchService) Cancel(ctx context.Context, emergencyID, operatorID, reason string) (*domain.Emergency, error) {
	return s.AdvanceStatus(ctx, emergencyID, domain.StatusCancelled, operatorID, reason)
}

// SetEta records the dispatcher-declared arrival estimate.
func (s *DispatchService) SetEta(ctx context.Context, emergencyID string, minutes int) (*domain.Emergency, error) {
	if err := domain.ValidateEta(minutes); err != nil {
		return nil, fmt.Errorf("set eta: %w", err)
	}

	e, err := s.store.PutEmergency(ctx, emergencyID, func(e *domain.Emergency) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return e.SetEta(minutes)
	})
	if err != nil {
		return nil, fmt.Errorf("set eta: %w", cancelled(err))
	}

	metrics.EtaMinutes.Observe(float64(minutes))
	s.logger.Info().Str("emergency_id", e.ID).Int("eta_minutes", minutes).Msg("eta set")

	s.publish(domain.DispatchEvent{
		Type:        domain.EventEtaSet,
		EmergencyID: e.ID,
		UnitID:      assignedUnit(e),
		Status:      e.Status,
		Detail:      fmt.Sprintf("%d min", minutes),
		OccurredAt:  s.now().UTC(),
	})
	return e, nil
}

// RegisterUnit adds an AVAILABLE unit to the fleet.
func (s *DispatchService) RegisterUnit(ctx context.Context, in ports.RegisterUnitInput) (*domain.Unit, error) {
	if in.CallSign == "" {
		return nil, fmt.Errorf("register unit: %w: call sign required", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = domain.UnitActive
	}
	if !status.Valid() {
		return nil, fmt.Errorf("register unit: %w: status %q", domain.ErrInvalidInput, in.Status)
	}
	if in.CurrentFix != nil && !in.CurrentFix.Valid() {
		return nil, fmt.Errorf("register unit: %w: fix coordinates", domain.ErrInvalidInput)
	}

	u := &domain.Unit{
		ID:           s.newID(),
		CallSign:     in.CallSign,
		Status:       status,
		Availability: domain.AvailabilityAvailable,
	}
	if in.CurrentFix != nil {
		fix := *in.CurrentFix
		u.CurrentFix = &fix
	}
	if err := s.store.CreateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("register unit: %w", cancelled(err))
	}

	s.logger.Info().Str("unit_id", u.ID).Str("call_sign", u.CallSign).Msg("unit registered")
	s.publishUnit(u)
	return u, nil
}

// GetUnit returns a single unit.
func (s *DispatchService) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	u, err := s.store.GetUnit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", cancelled(err))
	}
	return u, nil
}

// ListUnits returns units matching filter, e.g. the available-unit picker.
func (s *DispatchService) ListUnits(ctx context.Context, filter domain.UnitFilter) ([]*domain.Unit, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("list units: %w: status %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Availability != "" && !filter.Availability.Valid() {
		return nil, fmt.Errorf("list units: %w: availability %q", domain.ErrInvalidInput, filter.Availability)
	}
	units, err := s.store.ListUnits(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", cancelled(err))
	}
	return units, nil
}

// SetUnitStatus changes administrative status or duty state. Units working an
// emergency are left alone; EN_ROUTE and ON_SCENE are only set by dispatch.
func (s *DispatchService) SetUnitStatus(ctx context.Context, in ports.SetUnitStatusInput) (*domain.Unit, error) {
	if in.Status == "" && in.Availability == "" {
		return nil, fmt.Errorf("set unit status: %w: nothing to change", domain.ErrInvalidInput)
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("set unit status: %w: status %q", domain.ErrInvalidInput, in.Status)
	}
	switch in.Availability {
	case "", domain.AvailabilityAvailable, domain.AvailabilityOffDuty:
	default:
		return nil, fmt.Errorf("set unit status: %w: availability %q", domain.ErrInvalidInput, in.Availability)
	}

	u, err := s.store.PutUnit(ctx, in.UnitID, func(u *domain.Unit) error {
		if u.AssignedEmergencyID != nil {
			return fmt.Errorf("%w (emergency %s)", domain.ErrUnitEngaged, *u.AssignedEmergencyID)
		}
		if in.Status != "" {
			u.Status = in.Status
		}
		if in.Availability != "" {
			u.Availability = in.Availability
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set unit status: %w", cancelled(err))
	}

	s.logger.Info().
		Str("unit_id", u.ID).
		Str("status", string(u.Status)).
		Str("availability", string(u.Availability)).
		Msg("unit status changed")
	s.publishUnit(u)
	return u, nil
}

// UpdateUnitFix stores the unit's latest known position.
func (s *DispatchService) UpdateUnitFix(ctx context.Context, unitID string, fix domain.Fix) (*domain.Unit, error) {
	if !fix.Valid() {
		return nil, fmt.Errorf("update unit fix: %w: fix coordinates", domain.ErrInvalidInput)
	}
	u, err := s.store.PutUnit(ctx, unitID, func(u *domain.Unit) error {
		u.CurrentFix = &fix
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update unit fix: %w", cancelled(err))
	}
	s.logger.Debug().Str("unit_id", u.ID).Float64("accuracy_m", fix.AccuracyMeters).Msg("unit position updated")
	s.publishUnit(u)
	return u, nil
}

func (s *DispatchService) publishUnit(u *domain.Unit) {
	ev := domain.DispatchEvent{
		Type:       domain.EventUnitUpdated,
		UnitID:     u.ID,
		Detail:     string(u.Availability),
		OccurredAt: s.now().UTC(),
	}
	if u.AssignedEmergencyID != nil {
		ev.EmergencyID = *u.AssignedEmergencyID
	}
	s.publish(ev)
}

func (s *DispatchService) publish(ev domain.DispatchEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(ev)
}

// cancelled marks caller abandonment. Deadline expiries stay store failures.
func cancelled(err error) error {
	if errors.Is(err, context.Canceled) {
		if errors.Is(err, domain.ErrOperationCancelled) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrOperationCancelled, err)
	}
	return err
}

func assignedUnit(e *domain.Emergency) string {
	if e.AssignedUnitID == nil {
		return ""
	}
	return *e.AssignedUnitID
}

func assignmentResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmergencyNotPending):
		return "not_pending"
	case errors.Is(err, domain.ErrUnitNotAvailable):
		return "unit_unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOperationCancelled):
		return "cancelled"
	default:
		return "error"
	}
}
