package mongo

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

const (
	collectionEmergencies = "emergencies"
	collectionUnits       = "units"

	// maxWriteAttempts bounds optimistic retries on version conflicts.
	maxWriteAttempts = 5
)

// Store implements ports.RecordStore on MongoDB. Single-record writes are
// guarded by the version field; PutAssignment runs in a multi-document
// transaction and therefore needs a replica set.
type Store struct {
	client      *mongo.Client
	emergencies *mongo.Collection
	units       *mongo.Collection
	logger      zerolog.Logger
}

var _ ports.RecordStore = (*Store)(nil)

// NewStore returns a Store bound to db.
func NewStore(client *mongo.Client, db *mongo.Database, logger zerolog.Logger) *Store {
	return &Store{
		client:      client,
		emergencies: db.Collection(collectionEmergencies),
		units:       db.Collection(collectionUnits),
		logger:      logger.With().Str("component", "mongo_store").Logger(),
	}
}

// EnsureIndexes creates the indexes used by the dispatcher board and the unit picker.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.emergencies.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_unit_id", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.units.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "availability", Value: 1}}},
	})
	return err
}

// PutAssignment loads, mutates and writes both records inside one transaction.
// The driver retries the callback on transient transaction errors, so the
// mutator re-validates against fresh state on every attempt.
func (s *Store) PutAssignment(ctx context.Context, emergencyID, unitID string, mutate ports.AssignmentMutator) (*domain.Emergency, *domain.Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := s.client.StartSession()
	if err != nil {
		return nil, nil, err
	}
	defer session.EndSession(ctx)

	var (
		outE *domain.Emergency
		outU *domain.Unit
	)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		curE, err := s.findEmergency(sc, emergencyID)
		if err != nil {
			return nil, err
		}
		var curU *domain.Unit
		if unitID != "" {
			if curU, err = s.findUnit(sc, unitID); err != nil {
				return nil, err
			}
		}

		nextE, nextU := curE.Clone(), curU.Clone()
		if err := mutate(nextE, nextU); err != nil {
			return nil, err
		}
		if err := nextE.CheckAssignmentInvariant(); err != nil {
			return nil, err
		}
		nextE.Version = curE.Version + 1
		if err := s.writeEmergency(sc, curE, nextE); err != nil {
			return nil, err
		}

		if nextU != nil {
			if err := nextU.CheckAssignmentInvariant(); err != nil {
				return nil, err
			}
			nextU.Version = curU.Version + 1
			if err := s.writeUnit(sc, curU, nextU); err != nil {
				return nil, err
			}
		}

		outE, outU = nextE, nextU
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outE, outU, nil
}
