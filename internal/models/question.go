package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleSelect QuestionType = "multiple_select"
	Essay          QuestionType = "essay"
)

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	Type   QuestionType `json:"type" gorm:"not null;index"`
	Text   string       `json:"text" gorm:"type:text;not null"`
	Points int          `json:"points" gorm:"default:1"`

	// CorrectAnswer is a JSON array of option strings for multiple-select
	// questions; unused for essays.
	CorrectAnswer datatypes.JSON `json:"correct_answer,omitempty" gorm:"type:jsonb"`

	// Rubric holds []RubricCriterion for essay questions.
	Rubric datatypes.JSON `json:"rubric,omitempty" gorm:"type:jsonb"`

	CategoryID uint `json:"category_id" gorm:"not null;index"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category Category `json:"category" gorm:"foreignKey:CategoryID"`
	Creator  User     `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Question) TableName() string {
	return "questions"
}

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null;size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// RubricCriterion bounds manual essay grading: graded points for a criterion
// are capped at MaxPoints.
type RubricCriterion struct {
	Criterion string  `json:"criterion"`
	MaxPoints float64 `json:"max_points"`
}
