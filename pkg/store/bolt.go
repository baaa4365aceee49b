package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
	bolt "go.etcd.io/bbolt"
)

// Bucket names.
var (
	bucketSessions = []byte("sessions") // ID -> record.Session
	bucketGoals    = []byte("goals")    // ID -> record.Goal
)

// BoltConfig contains BoltDB store configuration.
type BoltConfig struct {
	// DBPath is the BoltDB file path. A leading ~ is expanded.
	DBPath string

	// Timeout is the file lock timeout (default: 1 second).
	Timeout time.Duration
}

// boltStore implements Store using BoltDB.
type boltStore struct {
	db     *bolt.DB
	logger logger.Logger
}

// NewBolt opens (or creates) a BoltDB-backed store.
//
// Returns an error if the database cannot be opened or initialised.
func NewBolt(cfg BoltConfig, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath, err := prepareFile(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSessions, bucketGoals} {
			if _, createErr := tx.CreateBucketIfNotExists(name); createErr != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, createErr)
			}
		}
		return nil
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, err
	}

	log.Info("bolt store initialized", "db_path", dbPath)

	return &boltStore{db: db, logger: log}, nil
}

// ListSessions implements Store.ListSessions.
func (b *boltStore) ListSessions(ctx context.Context) ([]record.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessions := make([]record.Session, 0, 16)

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var s record.Session
			if unmarshalErr := json.Unmarshal(v, &s); unmarshalErr != nil {
				b.logger.Warn("failed to unmarshal session",
					"id", string(k),
					"error", unmarshalErr)
				return nil // Skip invalid entries.
			}

			sessions = append(sessions, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sortSessions(sessions)
	return sessions, nil
}

// RecentSessions implements Store.RecentSessions.
func (b *boltStore) RecentSessions(ctx context.Context, limit int) ([]record.Session, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	sessions, err := b.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return limitSessions(sessions, limit)
}

// GetSession implements Store.GetSession.
func (b *boltStore) GetSession(ctx context.Context, id string) (record.Session, error) {
	var s record.Session
	if err := b.get(ctx, bucketSessions, id, &s); err != nil {
		return record.Session{}, fmt.Errorf("session %s: %w", id, err)
	}
	return s, nil
}

// CreateSession implements Store.CreateSession.
func (b *boltStore) CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error) {
	s := in.Session(newID())
	if err := b.put(ctx, bucketSessions, s.ID, s); err != nil {
		return record.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	b.logger.Debug("session stored", "id", s.ID, "subject", s.Subject)
	return s, nil
}

// ListGoals implements Store.ListGoals.
func (b *boltStore) ListGoals(ctx context.Context) ([]record.Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	goals := make([]record.Goal, 0, 8)

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGoals).ForEach(func(k, v []byte) error {
			var g record.Goal
			if unmarshalErr := json.Unmarshal(v, &g); unmarshalErr != nil {
				b.logger.Warn("failed to unmarshal goal",
					"id", string(k),
					"error", unmarshalErr)
				return nil
			}

			goals = append(goals, g)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	sortGoals(goals)
	return goals, nil
}

// ActiveGoals implements Store.ActiveGoals.
func (b *boltStore) ActiveGoals(ctx context.Context, now time.Time) ([]record.Goal, error) {
	goals, err := b.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	return activeGoals(goals, now), nil
}

// GetGoal implements Store.GetGoal.
func (b *boltStore) GetGoal(ctx context.Context, id string) (record.Goal, error) {
	var g record.Goal
	if err := b.get(ctx, bucketGoals, id, &g); err != nil {
		return record.Goal{}, fmt.Errorf("goal %s: %w", id, err)
	}
	return g, nil
}

// CreateGoal implements Store.CreateGoal.
func (b *boltStore) CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error) {
	g := in.Goal(newID())
	if err := b.put(ctx, bucketGoals, g.ID, g); err != nil {
		return record.Goal{}, fmt.Errorf("failed to store goal: %w", err)
	}

	b.logger.Debug("goal stored", "id", g.ID, "title", g.Title)
	return g, nil
}

// Close implements Store.Close.
func (b *boltStore) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	b.logger.Info("bolt store closed")
	return nil
}

func (b *boltStore) get(ctx context.Context, bucket []byte, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
}

func (b *boltStore) put(ctx context.Context, bucket []byte, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(id), data)
	})
}
