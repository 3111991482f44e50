package models

import "gorm.io/gorm"

type Company struct {
	gorm.Model
	OwnerID          uint `gorm:"index"` // user with role=company
	Name             string
	MaxCollaborators int `gorm:"default:5"`
}

// CompanyUser links an auth identity to a tenant company and occupies one
// seat while active. Its ID is the tenant-scoped collaborator identity that
// the points ledger references.
type CompanyUser struct {
	gorm.Model
	CompanyID   uint   `gorm:"index"`
	UserID      uint   `gorm:"index"`
	InviteToken string `gorm:"uniqueIndex"`
	Active      bool   `gorm:"default:true"`
}
