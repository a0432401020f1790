package domain

import "time"

// TimeWindow bounds a query by creation time.
type TimeWindow string

const (
	WindowToday     TimeWindow = "today"
	WindowLast24h   TimeWindow = "last24h"
	WindowLast7Days TimeWindow = "last7days"
	WindowAll       TimeWindow = "all"
)

// Valid reports whether w is a known window. The empty window means all.
func (w TimeWindow) Valid() bool {
	switch w {
	case "", WindowToday, WindowLast24h, WindowLast7Days, WindowAll:
		return true
	}
	return false
}

// Since returns the inclusive lower bound of w relative to now, or the zero
// time when the window is unbounded. "today" starts at midnight in now's location.
func (w TimeWindow) Since(now time.Time) time.Time {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowLast24h:
		return now.Add(-24 * time.Hour)
	case WindowLast7Days:
		return now.AddDate(0, 0, -7)
	default:
		return time.Time{}
	}
}

// Predicate is a pure test over an emergency.
type Predicate func(*Emergency) bool

// ByPriority matches p; the empty priority matches everything.
func ByPriority(p Priority) Predicate {
	return func(e *Emergency) bool {
		return p == "" || e.Priority == p
	}
}

// ByStatus matches any of statuses; no statuses matches everything.
func ByStatus(statuses ...EmergencyStatus) Predicate {
	return func(e *Emergency) bool {
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if e.Status == s {
				return true
			}
		}
		return false
	}
}

// ByWindow matches emergencies created inside w as seen from now.
func ByWindow(w TimeWindow, now time.Time) Predicate {
	since := w.Since(now)
	return func(e *Emergency) bool {
		return since.IsZero() || !e.CreatedAt.Before(since)
	}
}

// All combines predicates with logical AND.
func All(preds ...Predicate) Predicate {
	return func(e *Emergency) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// EmergencyFilter carries the query parameters understood by every store.
type EmergencyFilter struct {
	Priority Priority
	Statuses []EmergencyStatus
	Window   TimeWindow
	// Now anchors the window; stores must not read the clock themselves.
	Now time.Time
}

// Predicate returns the filter as a composed predicate.
func (f EmergencyFilter) Predicate() Predicate {
	return All(ByPriority(f.Priority), ByStatus(f.Statuses...), ByWindow(f.Window, f.Now))
}

// Matches reports whether e passes the filter.
func (f EmergencyFilter) Matches(e *Emergency) bool {
	return f.Predicate()(e)
}

// Since returns the creation-time lower bound implied by the window.
func (f EmergencyFilter) Since() time.Time {
	return f.Window.Since(f.Now)
}

// UnitFilter selects units by administrative status and availability.
// Empty fields match everything.
type UnitFilter struct {
	Status       UnitStatus
	Availability Availability
}

// Matches reports whether u passes the filter.
func (f UnitFilter) Matches(u *Unit) bool {
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if f.Availability != "" && u.Availability != f.Availability {
		return false
	}
	return true
}
