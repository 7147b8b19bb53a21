package repositories

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question operations
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDWithCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)

	// Count returns the number of questions currently available, reported to
	// the student at session creation.
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

// CategoryRepository interface for question categories
type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)
}
