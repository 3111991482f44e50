package progress

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lms/backend/models"
)

// Store is where reconciled progress records live.
type Store interface {
	// Get returns the record for the pair, or nil when none exists yet.
	Get(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error)
	// Upsert writes the record, keyed on the unique (user_id, lesson_id) pair.
	Upsert(ctx context.Context, rec *models.LessonProgress) error
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store backed by the relational database.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error) {
	var rec models.LessonProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) Upsert(ctx context.Context, rec *models.LessonProgress) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", rec.UserID, rec.LessonID).
		Assign(map[string]interface{}{
			"completed":          rec.Completed,
			"watch_time_seconds": rec.WatchTimeSeconds,
			"completed_at":       rec.CompletedAt,
			"last_watched_at":    rec.LastWatchedAt,
		}).
		FirstOrCreate(rec).Error
}
