package repositories

import (
	"time"

	"github.com/examstack/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	Status   *models.SessionStatus `json:"status"`
	UserID   *string               `json:"user_id"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type QuestionFilters struct {
	Type       *models.QuestionType `json:"type"`
	CategoryID *uint                `json:"category_id"`
	CreatedBy  *string              `json:"created_by"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

type PendingAnswerFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// StudentStats aggregates one student's sessions. AverageScore only covers
// sessions whose score is non-null: a session awaiting essay grading is
// excluded from the mean, not treated as zero.
type StudentStats struct {
	UserID            string   `json:"user_id"`
	SessionCount      int64    `json:"session_count"`
	CompletedSessions int64    `json:"completed_sessions"`
	AverageScore      *float64 `json:"average_score"`
}
