package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

func TestEmergencyUpdate_AssignSetsUnitAndPushesEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cur := &domain.Emergency{ID: "e1", Status: domain.StatusPending, Priority: domain.PriorityHigh, Timeline: []domain.TimelineEvent{}}
	unit := &domain.Unit{ID: "u1", Status: domain.UnitActive, Availability: domain.AvailabilityAvailable}

	next := cur.Clone()
	require.NoError(t, domain.Assign(next, unit, "op1", at))
	next.Version = 1

	update, err := emergencyUpdate(cur, next)
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.Equal(t, domain.StatusEnRoute, set["status"])
	assert.Equal(t, "u1", set["assigned_unit_id"])
	assert.Equal(t, int64(1), set["version"])

	unset := update["$unset"].(bson.M)
	assert.Contains(t, unset, "estimated_arrival_minutes")
	assert.NotContains(t, unset, "assigned_unit_id")

	push := update["$push"].(bson.M)["timeline"].(bson.M)["$each"].([]domain.TimelineEvent)
	assert.Len(t, push, 1)
}

func TestEmergencyUpdate_ReleaseUnsetsUnit(t *testing.T) {
	unitID, eta := "u1", 9
	cur := &domain.Emergency{
		ID:                      "e1",
		Status:                  domain.StatusEnRoute,
		AssignedUnitID:          &unitID,
		EstimatedArrivalMinutes: &eta,
		Timeline:                []domain.TimelineEvent{{Label: "Unit assigned"}},
	}
	next := cur.Clone()
	require.NoError(t, domain.Advance(next, nil, domain.StatusCancelled, "op1", "", time.Now()))

	update, err := emergencyUpdate(cur, next)
	require.NoError(t, err)

	assert.Contains(t, update["$unset"].(bson.M), "assigned_unit_id")
	assert.Equal(t, 9, update["$set"].(bson.M)["estimated_arrival_minutes"])
	push := update["$push"].(bson.M)["timeline"].(bson.M)["$each"].([]domain.TimelineEvent)
	require.Len(t, push, 1)
	assert.Equal(t, domain.StatusCancelled, push[0].To)
}

func TestEmergencyUpdate_NoNewEventsNoPush(t *testing.T) {
	cur := &domain.Emergency{ID: "e1", Status: domain.StatusPending, Timeline: []domain.TimelineEvent{}}
	next := cur.Clone()
	next.Description = "updated"

	update, err := emergencyUpdate(cur, next)
	require.NoError(t, err)
	assert.NotContains(t, update, "$push")
}

func TestEmergencyUpdate_RejectsShrunkTimeline(t *testing.T) {
	cur := &domain.Emergency{ID: "e1", Timeline: []domain.TimelineEvent{{Label: "a"}, {Label: "b"}}}
	next := cur.Clone()
	next.Timeline = next.Timeline[:1]

	_, err := emergencyUpdate(cur, next)
	assert.ErrorIs(t, err, errTimelineRewritten)
}

func TestEmergencyQuery(t *testing.T) {
	now := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)

	q := emergencyQuery(domain.EmergencyFilter{
		Priority: domain.PriorityHigh,
		Statuses: []domain.EmergencyStatus{domain.StatusPending},
		Window:   domain.WindowLast24h,
		Now:      now,
	})
	assert.Equal(t, domain.PriorityHigh, q["priority"])
	assert.Equal(t, bson.M{"$in": []domain.EmergencyStatus{domain.StatusPending}}, q["status"])
	assert.Equal(t, bson.M{"$gte": now.Add(-24 * time.Hour)}, q["created_at"])

	assert.Empty(t, emergencyQuery(domain.EmergencyFilter{Window: domain.WindowAll, Now: now}))
}
