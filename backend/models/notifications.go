package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID uint `gorm:"index"`
	Type   string
	Title  string
	Body   string
	Read   bool `gorm:"default:false"`
}
