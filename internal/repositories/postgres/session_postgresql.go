package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// sessionPostgreSQL implements repositories.SessionRepository.
type sessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &sessionPostgreSQL{db: db}
}

// getDB returns the transaction handle when one is supplied, otherwise the
// repository's own connection.
func (r *sessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	if err := r.getDB(tx).WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create exam session: %w", err)
	}
	return nil
}

func (r *sessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := r.getDB(tx).WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionPostgreSQL) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	err := r.getDB(tx).WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	if err := r.getDB(tx).WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update exam session: %w", err)
	}
	return nil
}

func (r *sessionPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SessionStatus) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	var sessions []*models.ExamSession
	var total int64

	query := r.getDB(tx).WithContext(ctx).Model(&models.ExamSession{})
	query = applySessionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exam sessions: %w", err)
	}

	query = applyPagination(query, filters.Offset, filters.Limit)
	if err := query.Order("started_at DESC").Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exam sessions: %w", err)
	}
	return sessions, total, nil
}

func (r *sessionPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	filters.UserID = &userID
	return r.List(ctx, tx, filters)
}

func applySessionFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}

// applyPagination normalizes offset/limit and applies them. Shared by every
// listing query in this package.
func applyPagination(query *gorm.DB, offset, limit int) *gorm.DB {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return query.Offset(offset).Limit(limit)
}
