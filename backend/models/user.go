package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:student"` // producer, company, student, collaborator

	// Set when a company provisions the account with a temporary password.
	// Cleared on the first successful password change.
	MustChangePassword bool `gorm:"default:false"`
}
