package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// questionPostgreSQL implements repositories.QuestionRepository with a
// read-through cache on the hot single-question and count lookups.
type questionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &questionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *questionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *questionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := r.getDB(tx).WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	r.invalidate(ctx, question.ID)
	return nil
}

func (r *questionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	// Reads inside a transaction skip the cache so they see tx-local state.
	if tx != nil || r.cacheManager == nil {
		return r.fetchByID(ctx, tx, id)
	}

	var question models.Question
	key := fmt.Sprintf("id:%d", id)
	err := r.cacheManager.Question.CacheOrExecute(ctx, key, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		return r.fetchByID(ctx, nil, id)
	})
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionPostgreSQL) fetchByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := r.getDB(tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionPostgreSQL) GetByIDWithCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	err := r.getDB(tx).WithContext(ctx).
		Preload("Category").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := r.getDB(tx).WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	r.invalidate(ctx, question.ID)
	return nil
}

func (r *questionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := r.getDB(tx).WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *questionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	query := r.getDB(tx).WithContext(ctx).Model(&models.Question{})
	query = applyQuestionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = applyPagination(query, filters.Offset, filters.Limit)
	err := query.
		Preload("Category").
		Order("created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

func (r *questionPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx != nil || r.cacheManager == nil {
		return r.fetchCount(ctx, tx)
	}

	var count int64
	err := r.cacheManager.Question.CacheOrExecute(ctx, "count", &count, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		return r.fetchCount(ctx, nil)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *questionPostgreSQL) fetchCount(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (r *questionPostgreSQL) invalidate(ctx context.Context, questionID uint) {
	if r.cacheManager == nil {
		return
	}
	cache.InvalidateQuestionCache(ctx, r.cacheManager, questionID)
}

func applyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}
