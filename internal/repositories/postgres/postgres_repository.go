package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/repositories"
)

// PostgreSQLRepository aggregates all sub-repositories over one gorm handle.
type PostgreSQLRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	sessionRepo  repositories.SessionRepository
	answerRepo   repositories.AnswerRepository
	questionRepo repositories.QuestionRepository
	categoryRepo repositories.CategoryRepository
	userRepo     repositories.UserRepository
}

// NewPostgreSQLRepository creates the repository aggregate. cacheManager may
// be nil, in which case every read goes to the database.
func NewPostgreSQLRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.Repository {
	return &PostgreSQLRepository{
		db:           db,
		cacheManager: cacheManager,
		sessionRepo:  NewSessionPostgreSQL(db),
		answerRepo:   NewAnswerPostgreSQL(db),
		questionRepo: NewQuestionPostgreSQL(db, cacheManager),
		categoryRepo: NewCategoryPostgreSQL(db),
		userRepo:     NewUserPostgreSQL(db),
	}
}

func (r *PostgreSQLRepository) Session() repositories.SessionRepository {
	return r.sessionRepo
}

func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository {
	return r.answerRepo
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return r.questionRepo
}

func (r *PostgreSQLRepository) Category() repositories.CategoryRepository {
	return r.categoryRepo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.userRepo
}

// WithTransaction runs fn inside one database transaction. The repository
// passed to fn is rebound to the transaction handle, so every call made
// through it commits or rolls back atomically.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgreSQLRepository(tx, r.cacheManager))
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
