package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sessionRow is the sessions table schema.
//
// Timestamps are stored in UTC so that textual ordering in SQLite matches
// chronological ordering.
type sessionRow struct {
	ID       string    `gorm:"primaryKey;size:36"`
	Subject  string    `gorm:"not null"`
	Duration int       `gorm:"not null"`
	Date     time.Time `gorm:"not null;index"`
	Notes    string
}

func (sessionRow) TableName() string { return "sessions" }

func (r sessionRow) record() record.Session {
	return record.Session{
		ID:       r.ID,
		Subject:  r.Subject,
		Duration: r.Duration,
		Date:     r.Date,
		Notes:    r.Notes,
	}
}

// goalRow is the goals table schema.
type goalRow struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Type        string    `gorm:"not null"`
	TargetHours int       `gorm:"not null"`
	Title       string    `gorm:"not null"`
	StartDate   time.Time `gorm:"not null;index"`
	EndDate     time.Time `gorm:"not null;index"`
}

func (goalRow) TableName() string { return "goals" }

func (r goalRow) record() record.Goal {
	return record.Goal{
		ID:          r.ID,
		Type:        record.GoalType(r.Type),
		TargetHours: r.TargetHours,
		Title:       r.Title,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

// sqliteStore implements Store using gorm over a pure-Go SQLite driver.
type sqliteStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewSQLite opens (or creates) a SQLite database at path and migrates the
// sessions and goals tables.
func NewSQLite(path string, log logger.Logger) (Store, error) {
	dbPath, err := prepareFile(path)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// SQLite allows a single writer; serialise access instead of
	// surfacing SQLITE_BUSY to callers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sessionRow{}, &goalRow{}); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.Error("failed to close database after migration error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("sqlite store initialized", "db_path", dbPath)

	return &sqliteStore{db: db, logger: log}, nil
}

// ListSessions implements Store.ListSessions.
func (s *sqliteStore) ListSessions(ctx context.Context) ([]record.Session, error) {
	return s.sessions(ctx, 0)
}

// RecentSessions implements Store.RecentSessions.
func (s *sqliteStore) RecentSessions(ctx context.Context, limit int) ([]record.Session, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return s.sessions(ctx, limit)
}

func (s *sqliteStore) sessions(ctx context.Context, limit int) ([]record.Session, error) {
	var rows []sessionRow

	q := s.db.WithContext(ctx).Order("date DESC").Order("rowid ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]record.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.record())
	}
	return sessions, nil
}

// GetSession implements Store.GetSession.
func (s *sqliteStore) GetSession(ctx context.Context, id string) (record.Session, error) {
	var row sessionRow

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Session{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return row.record(), nil
}

// CreateSession implements Store.CreateSession.
func (s *sqliteStore) CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error) {
	rec := in.Session(newID())
	row := sessionRow{
		ID:       rec.ID,
		Subject:  rec.Subject,
		Duration: rec.Duration,
		Date:     rec.Date.UTC(),
		Notes:    rec.Notes,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return record.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug("session stored", "id", rec.ID, "subject", rec.Subject)
	return rec, nil
}

// ListGoals implements Store.ListGoals.
func (s *sqliteStore) ListGoals(ctx context.Context) ([]record.Goal, error) {
	var rows []goalRow

	err := s.db.WithContext(ctx).Order("start_date DESC").Order("rowid ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goalRecords(rows), nil
}

// ActiveGoals implements Store.ActiveGoals.
func (s *sqliteStore) ActiveGoals(ctx context.Context, now time.Time) ([]record.Goal, error) {
	var rows []goalRow

	err := s.db.WithContext(ctx).
		Where("end_date >= ?", now.UTC()).
		Order("end_date ASC").
		Order("rowid ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}
	return goalRecords(rows), nil
}

// GetGoal implements Store.GetGoal.
func (s *sqliteStore) GetGoal(ctx context.Context, id string) (record.Goal, error) {
	var row goalRow

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Goal{}, fmt.Errorf("failed to get goal %s: %w", id, err)
	}
	return row.record(), nil
}

// CreateGoal implements Store.CreateGoal.
func (s *sqliteStore) CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error) {
	rec := in.Goal(newID())
	row := goalRow{
		ID:          rec.ID,
		Type:        string(rec.Type),
		TargetHours: rec.TargetHours,
		Title:       rec.Title,
		StartDate:   rec.StartDate.UTC(),
		EndDate:     rec.EndDate.UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return record.Goal{}, fmt.Errorf("failed to store goal: %w", err)
	}

	s.logger.Debug("goal stored", "id", rec.ID, "title", rec.Title)
	return rec, nil
}

// Close implements Store.Close.
func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.logger.Info("sqlite store closed")
	return nil
}

func goalRecords(rows []goalRow) []record.Goal {
	goals := make([]record.Goal, 0, len(rows))
	for _, r := range rows {
		goals = append(goals, r.record())
	}
	return goals
}
