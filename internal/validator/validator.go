package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/examstack/exam-service/internal/models"
)

// Validator wraps go-playground struct validation with the service's
// domain rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerDomainRules()
	return v
}

// Validate checks struct tags on any request type.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerDomainRules() {
	// Question type validation
	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qType := models.QuestionType(fl.Field().String())
		return qType == models.MultipleSelect || qType == models.Essay
	})

	// Points range validation (1-100)
	v.validate.RegisterValidation("points_range", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 1 && points <= 100
	})

	// Manual grades are floored at zero later, but negative input is a
	// client error worth rejecting outright.
	v.validate.RegisterValidation("grade_points", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() >= 0
	})
}
