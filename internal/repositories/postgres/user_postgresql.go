package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// userPostgreSQL implements repositories.UserRepository. Role lookups are
// deliberately uncached so role changes apply on the next request.
type userPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userPostgreSQL{db: db}
}

func (r *userPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userPostgreSQL) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	var user models.User
	if err := r.getDB(tx).WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertByExternalID inserts the user on first identity exchange and on
// conflict refreshes profile fields only. The id and role columns are left
// untouched so a local role grant survives later logins.
func (r *userPostgreSQL) UpsertByExternalID(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, error) {
	err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return r.GetByExternalID(ctx, tx, user.ExternalID)
}

func (r *userPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.getDB(tx).WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = applyPagination(query, filters.Offset, filters.Limit)
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetStudentStats aggregates one student's sessions in a single query.
// AVG(score) skips NULL rows, so sessions still awaiting essay grading do
// not drag the mean toward zero.
func (r *userPostgreSQL) GetStudentStats(ctx context.Context, tx *gorm.DB, userID string) (*repositories.StudentStats, error) {
	var row struct {
		SessionCount      int64
		CompletedSessions int64
		AverageScore      *float64
	}

	err := r.getDB(tx).WithContext(ctx).
		Model(&models.ExamSession{}).
		Select(
			"COUNT(*) AS session_count, COUNT(*) FILTER (WHERE status = ?) AS completed_sessions, AVG(score) AS average_score",
			models.SessionCompleted).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate student stats: %w", err)
	}

	return &repositories.StudentStats{
		UserID:            userID,
		SessionCount:      row.SessionCount,
		CompletedSessions: row.CompletedSessions,
		AverageScore:      row.AverageScore,
	}, nil
}
