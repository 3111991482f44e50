package models

import "gorm.io/gorm"

type CourseComment struct {
	gorm.Model
	CourseID uint `gorm:"index"`
	UserID   uint
	UserName string
	Text     string
	Rating   int                  `gorm:"check:rating>=0 AND rating<=5"`
	Replies  []CourseCommentReply `gorm:"foreignKey:CommentID"`
}

type CourseCommentReply struct {
	gorm.Model
	CommentID uint `gorm:"index"`
	UserID    uint
	UserName  string
	Text      string
}
