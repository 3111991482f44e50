package gamification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lms/backend/models"
	"lms/backend/utils"
)

// Point-earning action types.
const (
	ActionLessonCompleted = "lesson_completed"
	ActionCourseCompleted = "course_completed"
	ActionStreakDay       = "streak_day"
)

var pointValues = map[string]int{
	ActionLessonCompleted: 10,
	ActionCourseCompleted: 50,
	ActionStreakDay:       5,
}

// PointsFor returns the point value for the action type, 0 for unknown ones.
func PointsFor(action string) int {
	return pointValues[action]
}

// Service appends point-earning events to the ledger and answers point
// summary queries. Entries reference the tenant-scoped collaborator identity
// (CompanyUser), not the raw auth user.
type Service struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewService(db *gorm.DB, log *utils.Logger) *Service {
	return &Service{db: db, log: log.With("component", "gamification")}
}

// AwardLessonCompletion appends one lesson_completed ledger entry for the
// user's collaborator identity. A user with no active collaborator link earns
// nothing; that is a soft skip, not an error, so the caller's progress write
// is never disturbed.
//
// The once-per-lesson property holds because the caller only invokes this on
// the stored false->true completion transition. The ledger itself carries no
// uniqueness constraint.
func (s *Service) AwardLessonCompletion(ctx context.Context, userID, lessonID uint) error {
	student, err := s.resolveCollaborator(ctx, userID)
	if err != nil {
		s.log.Info("skipping award, no collaborator identity", "user_id", userID, "lesson_id", lessonID, "error", err)
		return nil
	}

	entry := models.PointsLedgerEntry{
		StudentID:   student.ID,
		Points:      PointsFor(ActionLessonCompleted),
		ActionType:  ActionLessonCompleted,
		ReferenceID: lessonID,
		EntryKey:    uuid.NewString(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}

	s.log.Info("points awarded", "student_id", student.ID, "lesson_id", lessonID, "points", entry.Points)
	return nil
}

var errNoCollaborator = errors.New("user has no active collaborator link")

func (s *Service) resolveCollaborator(ctx context.Context, userID uint) (*models.CompanyUser, error) {
	var cu models.CompanyUser
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		First(&cu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoCollaborator
	}
	if err != nil {
		return nil, err
	}
	return &cu, nil
}

// Summary is the per-student points rollup.
type Summary struct {
	TotalPoints int64                      `json:"total_points"`
	Recent      []models.PointsLedgerEntry `json:"recent"`
}

// SummaryForUser returns the caller's total points and most recent entries.
// A user without a collaborator identity gets an empty summary.
func (s *Service) SummaryForUser(ctx context.Context, userID uint) (*Summary, error) {
	student, err := s.resolveCollaborator(ctx, userID)
	if err != nil {
		if errors.Is(err, errNoCollaborator) {
			return &Summary{Recent: []models.PointsLedgerEntry{}}, nil
		}
		return nil, err
	}

	var total int64
	err = s.db.WithContext(ctx).
		Model(&models.PointsLedgerEntry{}).
		Where("student_id = ?", student.ID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}

	recent := []models.PointsLedgerEntry{}
	err = s.db.WithContext(ctx).
		Where("student_id = ?", student.ID).
		Order("created_at DESC").
		Limit(20).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	return &Summary{TotalPoints: total, Recent: recent}, nil
}

// LeaderboardRow is one collaborator's total within a company.
type LeaderboardRow struct {
	StudentID uint   `json:"student_id"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Points    int64  `json:"points"`
}

// Leaderboard returns per-collaborator point totals for one company,
// highest first. Inactive collaborators keep their earned entries but are
// excluded from the board.
func (s *Service) Leaderboard(ctx context.Context, companyID uint) ([]LeaderboardRow, error) {
	rows := []LeaderboardRow{}
	err := s.db.WithContext(ctx).
		Model(&models.CompanyUser{}).
		Select("company_users.id AS student_id, company_users.user_id AS user_id, users.name AS name, COALESCE(SUM(points_ledger_entries.points), 0) AS points").
		Joins("JOIN users ON users.id = company_users.user_id").
		Joins("LEFT JOIN points_ledger_entries ON points_ledger_entries.student_id = company_users.id").
		Where("company_users.company_id = ? AND company_users.active = ?", companyID, true).
		Group("company_users.id, company_users.user_id, users.name").
		Order("points DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
