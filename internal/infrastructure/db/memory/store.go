// Package memory provides a process-local RecordStore. All state is owned by a
// single goroutine; callers reach it through a request channel so every
// operation, including joint emergency/unit updates, runs serially.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory store closed")

type state struct {
	emergencies map[string]*domain.Emergency
	units       map[string]*domain.Unit
}

// Store is the in-memory RecordStore.
type Store struct {
	requests chan func(*state)
	quit     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

var _ ports.RecordStore = (*Store)(nil)

// NewStore starts the owning goroutine. Call Close to stop it.
func NewStore() *Store {
	s := &Store{
		requests: make(chan func(*state)),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.loop(&state{
		emergencies: make(map[string]*domain.Emergency),
		units:       make(map[string]*domain.Unit),
	})
	return s
}

func (s *Store) loop(st *state) {
	defer close(s.stopped)
	for {
		select {
		case <-s.quit:
			return
		case req := <-s.requests:
			req(st)
		}
	}
}

// Close stops the owning goroutine. It is safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
}

// do runs fn inside the owning goroutine. Once fn has been handed over, do
// waits for it to finish so a cancelled caller never leaves a half-known outcome.
func (s *Store) do(ctx context.Context, fn func(*state) error) error {
	reply := make(chan error, 1)
	req := func(st *state) { reply <- fn(st) }

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	case s.requests <- req:
	}
	return <-reply
}

func (s *Store) CreateEmergency(ctx context.Context, e *domain.Emergency) error {
	return s.do(ctx, func(st *state) error {
		if _, ok := st.emergencies[e.ID]; ok {
			return fmt.Errorf("emergency %s: %w", e.ID, domain.ErrAlreadyExists)
		}
		if err := e.CheckAssignmentInvariant(); err != nil {
			return err
		}
		st.emergencies[e.ID] = e.Clone()
		return nil
	})
}

func (s *Store) GetEmergency(ctx context.Context, id string) (*domain.Emergency, error) {
	var out *domain.Emergency
	err := s.do(ctx, func(st *state) error {
		e, ok := st.emergencies[id]
		if !ok {
			return domain.ErrEmergencyNotFound
		}
		out = e.Clone()
		return nil
	})
	return out, err
}

func (s *Store) ListEmergencies(ctx context.Context, filter domain.EmergencyFilter) ([]*domain.Emergency, error) {
	var out []*domain.Emergency
	err := s.do(ctx, func(st *state) error {
		match := filter.Predicate()
		for _, e := range st.emergencies {
			if match(e) {
				out = append(out, e.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (s *Store) PutEmergency(ctx context.Context, id string, mutate ports.EmergencyMutator) (*domain.Emergency, error) {
	var out *domain.Emergency
	err := s.do(ctx, func(st *state) error {
		cur, ok := st.emergencies[id]
		if !ok {
			return domain.ErrEmergencyNotFound
		}
		next := cur.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		if err := next.CheckAssignmentInvariant(); err != nil {
			return err
		}
		next.Version = cur.Version + 1
		st.emergencies[id] = next
		out = next.Clone()
		return nil
	})
	return out, err
}

func (s *Store) CreateUnit(ctx context.Context, u *domain.Unit) error {
	return s.do(ctx, func(st *state) error {
		if _, ok := st.units[u.ID]; ok {
			return fmt.Errorf("unit %s: %w", u.ID, domain.ErrAlreadyExists)
		}
		if err := u.CheckAssignmentInvariant(); err != nil {
			return err
		}
		st.units[u.ID] = u.Clone()
		return nil
	})
}

func (s *Store) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	var out *domain.Unit
	err := s.do(ctx, func(st *state) error {
		u, ok := st.units[id]
		if !ok {
			return domain.ErrUnitNotFound
		}
		out = u.Clone()
		return nil
	})
	return out, err
}

func (s *Store) ListUnits(ctx context.Context, filter domain.UnitFilter) ([]*domain.Unit, error) {
	var out []*domain.Unit
	err := s.do(ctx, func(st *state) error {
		for _, u := range st.units {
			if filter.Matches(u) {
				out = append(out, u.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (s *Store) PutUnit(ctx context.Context, id string, mutate ports.UnitMutator) (*domain.Unit, error) {
	var out *domain.Unit
	err := s.do(ctx, func(st *state) error {
		cur, ok := st.units[id]
		if !ok {
			return domain.ErrUnitNotFound
		}
		next := cur.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		if err := next.CheckAssignmentInvariant(); err != nil {
			return err
		}
		next.Version = cur.Version + 1
		st.units[id] = next
		out = next.Clone()
		return nil
	})
	return out, err
}

func (s *Store) PutAssignment(ctx context.Context, emergencyID, unitID string, mutate ports.AssignmentMutator) (*domain.Emergency, *domain.Unit, error) {
	var (
		outE *domain.Emergency
		outU *domain.Unit
	)
	err := s.do(ctx, func(st *state) error {
		curE, ok := st.emergencies[emergencyID]
		if !ok {
			return domain.ErrEmergencyNotFound
		}
		var curU *domain.Unit
		if unitID != "" {
			if curU, ok = st.units[unitID]; !ok {
				return domain.ErrUnitNotFound
			}
		}

		nextE, nextU := curE.Clone(), curU.Clone()
		if err := mutate(nextE, nextU); err != nil {
			return err
		}
		if err := nextE.CheckAssignmentInvariant(); err != nil {
			return err
		}
		if nextU != nil {
			if err := nextU.CheckAssignmentInvariant(); err != nil {
				return err
			}
		}

		nextE.Version = curE.Version + 1
		st.emergencies[emergencyID] = nextE
		outE = nextE.Clone()
		if nextU != nil {
			nextU.Version = curU.Version + 1
			st.units[unitID] = nextU
			outU = nextU.Clone()
		}
		return nil
	})
	return outE, outU, err
}
