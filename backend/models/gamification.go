package models

import "gorm.io/gorm"

// PointsLedgerEntry is an append-only record of a point-earning event.
// StudentID is the CompanyUser (collaborator) identity, not the raw user id.
// There is deliberately no uniqueness constraint on (student, action,
// reference); the once-per-completion guarantee lives in the completion
// transition check of the progress reconciler.
type PointsLedgerEntry struct {
	gorm.Model
	StudentID   uint   `gorm:"index"`
	Points      int    `gorm:"not null"`
	ActionType  string `gorm:"index"`
	ReferenceID uint
	EntryKey    string `gorm:"index"` // uuid, for tracing duplicate awards
}
