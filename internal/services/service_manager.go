package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

type defaultServiceManager struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	sessionService  SessionService
	gradingService  GradingService
	questionService QuestionService
	studentService  StudentService
	exportService   ExportService
}

// NewDefaultServiceManager wires every service. publisher may be nil when
// event publishing is not configured.
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, sessionDuration time.Duration) ServiceManager {
	return &defaultServiceManager{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,

		sessionService:  NewSessionService(repo, db, logger, validator, publisher, sessionDuration),
		gradingService:  NewGradingService(repo, db, logger, validator, publisher),
		questionService: NewQuestionService(repo, db, logger, validator),
		studentService:  NewStudentService(repo, db, logger),
		exportService:   NewExportService(repo, db, logger),
	}
}

func (m *defaultServiceManager) Session() SessionService   { return m.sessionService }
func (m *defaultServiceManager) Grading() GradingService   { return m.gradingService }
func (m *defaultServiceManager) Question() QuestionService { return m.questionService }
func (m *defaultServiceManager) Student() StudentService   { return m.studentService }
func (m *defaultServiceManager) Export() ExportService     { return m.exportService }

func (m *defaultServiceManager) Initialize(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *defaultServiceManager) Shutdown(ctx context.Context) error {
	if m.publisher != nil {
		return m.publisher.Close()
	}
	return nil
}
