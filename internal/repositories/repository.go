package repositories

import "context"

// Repository aggregates every sub-repository behind one handle so services
// depend on a single interface.
type Repository interface {
	Session() SessionRepository
	Answer() AnswerRepository
	Question() QuestionRepository
	Category() CategoryRepository
	User() UserRepository

	// WithTransaction runs fn against a Repository bound to one database
	// transaction; returning an error rolls everything back. All multi-step
	// session and grading mutations go through here.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
