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

func (s *Store) CreateUnit(ctx context.Context, u *domain.Unit) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := u.CheckAssignmentInvariant(); err != nil {
		return err
	}
	_, err := s.units.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("unit %s: %w", u.ID, domain.ErrAlreadyExists)
	}
	return err
}

func (s *Store) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.findUnit(ctx, id)
}

func (s *Store) ListUnits(ctx context.Context, filter domain.UnitFilter) ([]*domain.Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.Availability != "" {
		q["availability"] = filter.Availability
	}

	cursor, err := s.units.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Unit
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) PutUnit(ctx context.Context, id string, mutate ports.UnitMutator) (*domain.Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		cur, err := s.findUnit(ctx, id)
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

		err = s.writeUnit(ctx, cur, next)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, fmt.Errorf("unit %s: %w", id, domain.ErrVersionConflict)
}

func (s *Store) findUnit(ctx context.Context, id string) (*domain.Unit, error) {
	var u domain.Unit
	err := s.units.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUnitNotFound
		}
		return nil, err
	}
	return &u, nil
}

// writeUnit replaces the unit document if its version is still cur.Version.
// Nil pointers are dropped by omitempty, which clears the link and fix.
func (s *Store) writeUnit(ctx context.Context, cur, next *domain.Unit) error {
	res, err := s.units.ReplaceOne(ctx, bson.M{"_id": cur.ID, "version": cur.Version}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}
