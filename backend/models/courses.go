package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	ProducerID  uint `gorm:"index"`
	Title       string
	ShortDesc   string
	Description string
	Topic       string
	LogoURL     string
	Published   bool `gorm:"default:false"`
	Lessons     []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID        uint `gorm:"index"`
	Title           string
	Description     string
	VideoURL        string
	DurationSeconds int
	SequenceOrder   int
}
