package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event topic names.
const (
	TopicSessionCompleted = "session.completed"
	TopicAnswerGraded     = "answer.graded"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with the service identity filled in.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "exam-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// SessionCompletedData is the payload for session.completed. FinalScore is
// nil when essay answers are still awaiting manual grading.
type SessionCompletedData struct {
	SessionID   uint      `json:"session_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	FinalScore  *float64  `json:"final_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// AnswerGradedData is the payload for answer.graded.
type AnswerGradedData struct {
	AnswerID  uint    `json:"answer_id"`
	SessionID uint    `json:"session_id"`
	UserID    string  `json:"user_id"`
	Score     float64 `json:"score"`
	GradedBy  string  `json:"graded_by"`
}

// EventPublisher publishes domain events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
