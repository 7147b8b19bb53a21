package repositories

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for user operations. GetByID is hit on every
// admin-gated request so the current role is always read from the store,
// never trusted from token claims.
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error)

	// UpsertByExternalID creates the user on first identity exchange and
	// refreshes mutable profile fields afterwards. The id and role columns
	// are never overwritten by an upsert.
	UpsertByExternalID(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, error)

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	// GetStudentStats aggregates session count and mean non-null score for
	// one student.
	GetStudentStats(ctx context.Context, tx *gorm.DB, userID string) (*StudentStats, error)
}
