package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services and mapped to HTTP statuses in the
// handler layer.
var (
	ErrSessionNotFound        = errors.New("exam session not found")
	ErrSessionNotActive       = errors.New("exam session is not active")
	ErrSessionExpired         = errors.New("exam session has expired")
	ErrAnswerAlreadySubmitted = errors.New("answer already submitted for this question")
	ErrAnswerNotFound         = errors.New("answer not found")
	ErrNotEssayAnswer         = errors.New("answer is not for an essay question")
	ErrAnswerAlreadyGraded    = errors.New("answer has already been graded")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrUserNotFound           = errors.New("user not found")
)

// PermissionError carries who tried what on which resource, for logging and
// a 403 response.
type PermissionError struct {
	UserID     string
	ResourceID interface{}
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %v: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID interface{}, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ValidationError wraps field-level validation failures for a 400 response.
type ValidationError struct {
	Message string
	Details interface{}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details interface{}) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
