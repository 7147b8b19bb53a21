package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// answerPostgreSQL implements repositories.AnswerRepository.
type answerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &answerPostgreSQL{db: db}
}

func (r *answerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts one answer row. The (session_id, question_id) unique index
// rejects a second submission for the same question; the gorm error
// translation surfaces that as a duplicate-key error, which callers detect
// with repositories.IsDuplicateKeyError.
func (r *answerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	return r.getDB(tx).WithContext(ctx).Create(answer).Error
}

func (r *answerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.getDB(tx).WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerPostgreSQL) GetByIDWithQuestion(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	var answer models.Answer
	err := r.getDB(tx).WithContext(ctx).
		Preload("Question").
		First(&answer, id).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if err := r.getDB(tx).WithContext(ctx).Save(answer).Error; err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}
	return nil
}

func (r *answerPostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := r.getDB(tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get answers for session %d: %w", sessionID, err)
	}
	return answers, nil
}

func (r *answerPostgreSQL) ListPendingEssays(ctx context.Context, tx *gorm.DB, filters repositories.PendingAnswerFilters) ([]*models.Answer, int64, error) {
	var answers []*models.Answer
	var total int64

	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Answer{}).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("questions.type = ?", models.Essay).
		Where("answers.score IS NULL")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending essay answers: %w", err)
	}

	query = applyPagination(query, filters.Offset, filters.Limit)
	err := query.
		Preload("Question").
		Preload("Session").
		Order("answers.created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending essay answers: %w", err)
	}
	return answers, total, nil
}
