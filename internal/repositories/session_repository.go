package repositories

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"gorm.io/gorm"
)

// SessionRepository interface for exam-session operations. The tx parameter
// carries an explicit transaction handle; nil means the repository's own
// connection.
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SessionStatus) error

	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.ExamSession, int64, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters SessionFilters) ([]*models.ExamSession, int64, error)
}

// AnswerRepository interface for answer rows within sessions.
type AnswerRepository interface {
	// Create inserts one answer; a duplicate (session_id, question_id) pair
	// fails with a unique-violation surfaced via IsDuplicateKeyError.
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	GetByIDWithQuestion(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error

	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error)

	// ListPendingEssays returns ungraded essay answers joined with their
	// question and the owning session's user, oldest first.
	ListPendingEssays(ctx context.Context, tx *gorm.DB, filters PendingAnswerFilters) ([]*models.Answer, int64, error)
}
