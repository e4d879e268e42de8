package mood

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
)

// ErrEntryNotFound is returned when no entry exists for the requested day.
var ErrEntryNotFound = errors.New("mood entry not found")

// Entry is one user's mood record for one calendar day. The unique index on
// (user_id, date) enforces at most one entry per user per day.
type Entry struct {
	ID          string       `gorm:"primaryKey;size:26" json:"id"`
	UserID      string       `gorm:"size:64;not null;uniqueIndex:uniq_mood_user_date,priority:1" json:"userId"`
	Date        string       `gorm:"size:10;not null;uniqueIndex:uniq_mood_user_date,priority:2" json:"date"`
	Mood        string       `gorm:"size:32;not null" json:"mood"`
	Journal     string       `gorm:"type:text" json:"journal,omitempty"`
	CrisisLevel crisis.Level `gorm:"size:16;not null" json:"crisisLevel"`
	Timestamp   int64        `gorm:"not null" json:"timestamp"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (Entry) TableName() string { return "mood_entries" }

// NewEntryID mints a ULID for a new entry.
func NewEntryID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Store persists mood entries in sqlite through gorm.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

// NewStore wraps an existing gorm connection and migrates the schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Upsert writes the day's entry, replacing any existing entry for the same
// user and date. Last write wins; the original entry ID is kept on replace.
func (s *Store) Upsert(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry.ID == "" {
		id, err := NewEntryID()
		if err != nil {
			return nil, err
		}
		entry.ID = id
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mood", "journal", "crisis_level", "timestamp", "updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, entry.UserID, entry.Date)
}

// Get returns a user's entry for a calendar day.
func (s *Store) Get(ctx context.Context, userID, date string) (*Entry, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListCrisisEntries returns the most recent moderate and high entries for
// the counselor alert monitor, newest first.
func (s *Store) ListCrisisEntries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("crisis_level IN ?", []crisis.Level{crisis.LevelModerate, crisis.LevelHigh}).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
