package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// ===== SHARED LIST OPTIONS =====

type ListOptions struct {
	Limit  int
	Offset int
}

// ===== SESSION DTOs =====

// SessionResponse is the API view of one exam session. QuestionCount is the
// number of questions available when the session was created and is only
// populated on creation.
type SessionResponse struct {
	ID            uint                 `json:"id"`
	UserID        string               `json:"user_id"`
	Status        models.SessionStatus `json:"status"`
	Score         *float64             `json:"score"`
	StartedAt     time.Time            `json:"started_at"`
	ExpiresAt     time.Time            `json:"expires_at"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
	QuestionCount *int64               `json:"question_count,omitempty"`
	Answers       []AnswerResponse     `json:"answers,omitempty"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int64             `json:"total"`
}

// AnswerResponse is the API view of one submitted answer. Score is null
// while an essay awaits manual grading.
type AnswerResponse struct {
	ID         uint            `json:"id"`
	SessionID  uint            `json:"session_id"`
	QuestionID uint            `json:"question_id"`
	UserAnswer json.RawMessage `json:"user_answer"`
	Score      *float64        `json:"score"`
	IsCorrect  *bool           `json:"is_correct,omitempty"`
	Feedback   *string         `json:"feedback,omitempty"`
	GradedBy   *string         `json:"graded_by,omitempty"`
	GradedAt   *time.Time      `json:"graded_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ===== GRADING DTOs =====

// PendingAnswerResponse is one essay answer awaiting manual grading, with
// enough question context for the grader.
type PendingAnswerResponse struct {
	AnswerID     uint                     `json:"answer_id"`
	SessionID    uint                     `json:"session_id"`
	UserID       string                   `json:"user_id"`
	QuestionID   uint                     `json:"question_id"`
	QuestionText string                   `json:"question_text"`
	Rubric       []models.RubricCriterion `json:"rubric"`
	UserAnswer   json.RawMessage          `json:"user_answer"`
	SubmittedAt  time.Time                `json:"submitted_at"`
}

type PendingAnswerListResponse struct {
	Answers []PendingAnswerResponse `json:"answers"`
	Total   int64                   `json:"total"`
}

// GradeAnswerResponse reports the graded answer plus whatever the grade did
// to the owning session.
type GradeAnswerResponse struct {
	Answer           AnswerResponse `json:"answer"`
	SessionCompleted bool           `json:"session_completed"`
	SessionScore     *float64       `json:"session_score"`
}

// ===== QUESTION DTOs =====

// QuestionResponse is the admin view of a question, correct answers and
// rubric included. It is never returned on student routes.
type QuestionResponse struct {
	ID             uint                     `json:"id"`
	Type           models.QuestionType      `json:"type"`
	Text           string                   `json:"text"`
	Points         int                      `json:"points"`
	CorrectAnswers []string                 `json:"correct_answers,omitempty"`
	Rubric         []models.RubricCriterion `json:"rubric,omitempty"`
	CategoryID     uint                     `json:"category_id"`
	CategoryName   string                   `json:"category_name,omitempty"`
	CreatedBy      string                   `json:"created_by"`
	CreatedAt      time.Time                `json:"created_at"`
}

type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int64              `json:"total"`
}

type QuestionListFilters struct {
	Type       *models.QuestionType
	CategoryID *uint
	ListOptions
}

// ===== STUDENT DTOs =====

type StudentResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
	Total    int64             `json:"total"`
}

// ===== SERVICE INTERFACES =====

// SessionService owns the exam-session lifecycle.
type SessionService interface {
	Create(ctx context.Context, userID string) (*SessionResponse, error)
	GetByID(ctx context.Context, sessionID uint, userID string, isAdmin bool) (*SessionResponse, error)
	List(ctx context.Context, userID string, opts ListOptions) (*SessionListResponse, error)
	SubmitAnswer(ctx context.Context, sessionID uint, userID string, req *validator.SubmitAnswerRequest) (*AnswerResponse, error)
	Submit(ctx context.Context, sessionID uint, userID string) (*SessionResponse, error)
}

// GradingService owns the manual essay-grading workflow.
type GradingService interface {
	ListPendingEssays(ctx context.Context, opts ListOptions) (*PendingAnswerListResponse, error)
	GradeAnswer(ctx context.Context, answerID uint, graderID string, req *validator.GradeAnswerRequest) (*GradeAnswerResponse, error)
}

// QuestionService owns admin question and category management.
type QuestionService interface {
	Create(ctx context.Context, req *validator.QuestionCreateRequest, creatorID string) (*QuestionResponse, error)
	GetByID(ctx context.Context, questionID uint) (*QuestionResponse, error)
	Update(ctx context.Context, questionID uint, req *validator.QuestionUpdateRequest) (*QuestionResponse, error)
	Delete(ctx context.Context, questionID uint) error
	List(ctx context.Context, filters QuestionListFilters) (*QuestionListResponse, error)

	CreateCategory(ctx context.Context, req *validator.CategoryCreateRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// StudentService exposes student listings and per-student aggregates.
type StudentService interface {
	List(ctx context.Context, query string, opts ListOptions) (*StudentListResponse, error)
	GetStats(ctx context.Context, userID string) (*repositories.StudentStats, error)
}

// ExportService renders admin exports.
type ExportService interface {
	// ExportStudents returns an xlsx workbook of all students with their
	// session aggregates.
	ExportStudents(ctx context.Context) ([]byte, error)
}

// ServiceManager wires and owns every service.
type ServiceManager interface {
	Session() SessionService
	Grading() GradingService
	Question() QuestionService
	Student() StudentService
	Export() ExportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
