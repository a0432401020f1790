package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

var errTimelineRewritten = errors.New("timeline is append-only")

// CreateEmergency inserts a new emergency document.
func (s *Store) CreateEmergency(ctx context.Context, e *domain.Emergency) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := e.CheckAssignmentInvariant(); err != nil {
		return err
	}
	doc := e.Clone()
	if doc.Timeline == nil {
		// $push needs an array to append to.
		doc.Timeline = []domain.TimelineEvent{}
	}

	_, err := s.emergencies.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("emergency %s: %w", e.ID, domain.ErrAlreadyExists)
	}
	return err
}

// GetEmergency retrieves an emergency by id.
func (s *Store) GetEmergency(ctx context.Context, id string) (*domain.Emergency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.findEmergency(ctx, id)
}

// ListEmergencies returns emergencies matching filter, oldest first.
func (s *Store) ListEmergencies(ctx context.Context, filter domain.EmergencyFilter) ([]*domain.Emergency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.emergencies.Find(ctx, emergencyQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Emergency
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutEmergency applies mutate with optimistic concurrency: the write only
// lands if nobody bumped the version since the read, otherwise it re-reads and
// runs mutate again.
func (s *Store) PutEmergency(ctx context.Context, id string, mutate ports.EmergencyMutator) (*domain.Emergency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		cur, err := s.findEmergency(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		if err := next.CheckAssignmentInvariant(); err != nil {
			return nil, err
		}
		next.Version = cur.Version + 1

		err = s.writeEmergency(ctx, cur, next)
		if errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Debug().Str("emergency_id", id).Int("attempt", attempt+1).Msg("version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, fmt.Errorf("emergency %s: %w", id, domain.ErrVersionConflict)
}

func (s *Store) findEmergency(ctx context.Context, id string) (*domain.Emergency, error) {
	var e domain.Emergency
	err := s.emergencies.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmergencyNotFound
		}
		return nil, err
	}
	return &e, nil
}

// writeEmergency sets the mutable fields and appends new timeline entries in a
// single update guarded by cur.Version.
func (s *Store) writeEmergency(ctx context.Context, cur, next *domain.Emergency) error {
	update, err := emergencyUpdate(cur, next)
	if err != nil {
		return err
	}
	res, err := s.emergencies.UpdateOne(ctx, bson.M{"_id": cur.ID, "version": cur.Version}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func emergencyUpdate(cur, next *domain.Emergency) (bson.M, error) {
	if len(next.Timeline) < len(cur.Timeline) {
		return nil, errTimelineRewritten
	}

	set := bson.M{
		"status":      next.Status,
		"priority":    next.Priority,
		"kind":        next.Kind,
		"fix":         next.Fix,
		"patient_ref": next.PatientRef,
		"description": next.Description,
		"version":     next.Version,
	}
	unset := bson.M{}
	if next.AssignedUnitID != nil {
		set["assigned_unit_id"] = *next.AssignedUnitID
	} else {
		unset["assigned_unit_id"] = ""
	}
	if next.EstimatedArrivalMinutes != nil {
		set["estimated_arrival_minutes"] = *next.EstimatedArrivalMinutes
	} else {
		unset["estimated_arrival_minutes"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if added := next.Timeline[len(cur.Timeline):]; len(added) > 0 {
		update["$push"] = bson.M{"timeline": bson.M{"$each": added}}
	}
	return update, nil
}

func emergencyQuery(f domain.EmergencyFilter) bson.M {
	q := bson.M{}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if len(f.Statuses) > 0 {
		q["status"] = bson.M{"$in": f.Statuses}
	}
	if since := f.Since(); !since.IsZero() {
		q["created_at"] = bson.M{"$gte": since}
	}
	return q
}
