package validator

import (
	"encoding/json"

	"github.com/examstack/exam-service/internal/models"
)

// SubmitAnswerRequest carries one answer for one question. Answer is a JSON
// array of option strings for multiple-select or a JSON string for essays;
// the service validates the shape against the question type.
type SubmitAnswerRequest struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	Answer     json.RawMessage `json:"answer" validate:"required"`
}

// CriterionGradeRequest is one rubric line in a manual essay grade.
type CriterionGradeRequest struct {
	Criterion string  `json:"criterion" validate:"required,min=1,max=200"`
	Points    float64 `json:"points" validate:"grade_points"`
}

// GradeAnswerRequest is the admin's manual grade for one essay answer.
type GradeAnswerRequest struct {
	Grades   []CriterionGradeRequest `json:"grades" validate:"required,min=1,dive"`
	Feedback *string                 `json:"feedback" validate:"omitempty,max=2000"`
}

// QuestionCreateRequest creates a question. CorrectAnswers is required for
// multiple-select, Rubric for essays; the service enforces the pairing.
type QuestionCreateRequest struct {
	Type           models.QuestionType      `json:"type" validate:"required,question_type"`
	Text           string                   `json:"text" validate:"required,min=1,max=2000"`
	Points         int                      `json:"points" validate:"required,points_range"`
	CorrectAnswers []string                 `json:"correct_answers" validate:"omitempty,min=1,dive,min=1,max=500"`
	Rubric         []RubricCriterionRequest `json:"rubric" validate:"omitempty,min=1,dive"`
	CategoryID     uint                     `json:"category_id" validate:"required"`
}

// QuestionUpdateRequest updates a question; nil fields are left unchanged.
type QuestionUpdateRequest struct {
	Text           *string                  `json:"text" validate:"omitempty,min=1,max=2000"`
	Points         *int                     `json:"points" validate:"omitempty,points_range"`
	CorrectAnswers []string                 `json:"correct_answers" validate:"omitempty,min=1,dive,min=1,max=500"`
	Rubric         []RubricCriterionRequest `json:"rubric" validate:"omitempty,min=1,dive"`
	CategoryID     *uint                    `json:"category_id"`
}

type RubricCriterionRequest struct {
	Criterion string  `json:"criterion" validate:"required,min=1,max=200"`
	MaxPoints float64 `json:"max_points" validate:"required,gt=0"`
}

type CategoryCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Slug string `json:"slug" validate:"required,min=1,max=100,lowercase"`
}

// ListQuery is the shared pagination query shape.
type ListQuery struct {
	Limit  int `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}
