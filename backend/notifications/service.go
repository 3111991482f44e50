package notifications

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"lms/backend/models"
	"lms/backend/utils"
)

// Notification types.
const (
	TypeLessonCompleted = "lesson_completed"
	TypeSeatProvisioned = "seat_provisioned"
)

// Service writes and reads in-app notifications. Session-level dedup of
// completion notifications is the progress reconciler's job; this service
// just records and lists.
type Service struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewService(db *gorm.DB, log *utils.Logger) *Service {
	return &Service{db: db, log: log.With("component", "notifications")}
}

func (s *Service) LessonCompleted(ctx context.Context, userID, lessonID uint) error {
	var lesson models.Lesson
	title := "Lesson completed"
	body := "Nice work! You finished a lesson."
	if err := s.db.WithContext(ctx).First(&lesson, lessonID).Error; err == nil {
		body = fmt.Sprintf("Nice work! You finished %q.", lesson.Title)
	}

	return s.Create(ctx, userID, TypeLessonCompleted, title, body)
}

func (s *Service) Create(ctx context.Context, userID uint, typ, title, body string) error {
	n := models.Notification{
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return err
	}
	s.log.Debug("notification created", "user_id", userID, "type", typ)
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	list := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead flips the read flag. Marking someone else's notification is a
// not-found, not a forbidden, so ids cannot be probed.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
