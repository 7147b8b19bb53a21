package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired"
)

// ExamSession is one timed attempt by one user. Score stays nil until every
// contained answer has a score; a nil score is "not yet final", never zero.
type ExamSession struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	UserID string        `json:"user_id" gorm:"not null;index;size:255"`
	Status SessionStatus `json:"status" gorm:"default:in_progress;index"`

	Score       *float64   `json:"score"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User    User     `json:"-" gorm:"foreignKey:UserID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:SessionID"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// IsExpired reports whether the deadline has passed, independent of Status.
// Callers persist the expired transition lazily on the next access.
func (s *ExamSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Answer is one response to one question within one session. The composite
// unique index makes a second submission for the same pair fail at the
// database, which is what keeps concurrent duplicates out.
type Answer struct {
	ID         uint `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID  uint `json:"session_id" gorm:"not null;uniqueIndex:idx_session_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_session_question;index"`

	// UserAnswer is a JSON string for essays or a JSON array of option
	// strings for multiple-select.
	UserAnswer datatypes.JSON `json:"user_answer" gorm:"type:jsonb"`

	// Score is nil while an essay awaits manual grading. IsCorrect is only
	// meaningful for multiple-select and records exact set equality, not a
	// score threshold.
	Score     *float64 `json:"score"`
	IsCorrect *bool    `json:"is_correct"`

	// Manual grading audit trail.
	Feedback *string    `json:"feedback,omitempty" gorm:"type:text"`
	GradedBy *string    `json:"graded_by,omitempty" gorm:"size:255"`
	GradedAt *time.Time `json:"graded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Session  ExamSession `json:"-" gorm:"foreignKey:SessionID"`
	Question Question    `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Answer) TableName() string {
	return "answers"
}

// Graded reports whether the answer carries a score. Multiple-select answers
// are graded at submission; essays only once an admin grades them.
func (a *Answer) Graded() bool {
	return a.Score != nil
}
