package models

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress is the single persisted record per (user, lesson) pair.
// Completed only ever moves false->true and WatchTimeSeconds never regresses;
// both invariants are enforced by the progress reconciler on write.
type LessonProgress struct {
	gorm.Model
	UserID           uint `gorm:"uniqueIndex:idx_lesson_progress_user_lesson"`
	LessonID         uint `gorm:"uniqueIndex:idx_lesson_progress_user_lesson"`
	Completed        bool `gorm:"default:false"`
	WatchTimeSeconds int  `gorm:"default:0"`
	CompletedAt      *time.Time
	LastWatchedAt    time.Time
}
