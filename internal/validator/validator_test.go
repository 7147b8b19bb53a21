package validator

import (
	"encoding/json"
	"testing"

	"github.com/examstack/exam-service/internal/models"
)

func TestValidate_QuestionCreateRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     QuestionCreateRequest
		wantErr bool
	}{
		{
			name: "valid multiple select",
			req: QuestionCreateRequest{
				Type:           models.MultipleSelect,
				Text:           "pick options",
				Points:         5,
				CorrectAnswers: []string{"A", "B"},
				CategoryID:     1,
			},
		},
		{
			name: "valid essay",
			req: QuestionCreateRequest{
				Type:       models.Essay,
				Text:       "explain",
				Points:     10,
				Rubric:     []RubricCriterionRequest{{Criterion: "depth", MaxPoints: 5}},
				CategoryID: 1,
			},
		},
		{
			name: "unknown question type",
			req: QuestionCreateRequest{
				Type:       "true_false",
				Text:       "?",
				Points:     1,
				CategoryID: 1,
			},
			wantErr: true,
		},
		{
			name: "points out of range",
			req: QuestionCreateRequest{
				Type:           models.MultipleSelect,
				Text:           "pick",
				Points:         500,
				CorrectAnswers: []string{"A"},
				CategoryID:     1,
			},
			wantErr: true,
		},
		{
			name: "missing text",
			req: QuestionCreateRequest{
				Type:           models.MultipleSelect,
				Points:         1,
				CorrectAnswers: []string{"A"},
				CategoryID:     1,
			},
			wantErr: true,
		},
		{
			name: "rubric without max points",
			req: QuestionCreateRequest{
				Type:       models.Essay,
				Text:       "explain",
				Points:     10,
				Rubric:     []RubricCriterionRequest{{Criterion: "depth"}},
				CategoryID: 1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(&tt.req)
			if errs.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v: %v", errs.HasErrors(), tt.wantErr, errs)
			}
		})
	}
}

func TestValidate_GradeAnswerRequest(t *testing.T) {
	v := New()

	valid := GradeAnswerRequest{
		Grades: []CriterionGradeRequest{{Criterion: "depth", Points: 3}},
	}
	if errs := v.Validate(&valid); errs.HasErrors() {
		t.Errorf("valid request rejected: %v", errs)
	}

	zeroPoints := GradeAnswerRequest{
		Grades: []CriterionGradeRequest{{Criterion: "depth", Points: 0}},
	}
	if errs := v.Validate(&zeroPoints); errs.HasErrors() {
		t.Errorf("zero points rejected, should be allowed: %v", errs)
	}

	negative := GradeAnswerRequest{
		Grades: []CriterionGradeRequest{{Criterion: "depth", Points: -1}},
	}
	if errs := v.Validate(&negative); !errs.HasErrors() {
		t.Error("negative points accepted")
	}

	empty := GradeAnswerRequest{}
	if errs := v.Validate(&empty); !errs.HasErrors() {
		t.Error("empty grades accepted")
	}
}

func TestValidate_SubmitAnswerRequest(t *testing.T) {
	v := New()

	valid := SubmitAnswerRequest{
		QuestionID: 1,
		Answer:     json.RawMessage(`["A"]`),
	}
	if errs := v.Validate(&valid); errs.HasErrors() {
		t.Errorf("valid request rejected: %v", errs)
	}

	missing := SubmitAnswerRequest{Answer: json.RawMessage(`["A"]`)}
	if errs := v.Validate(&missing); !errs.HasErrors() {
		t.Error("missing question_id accepted")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "text", Message: "is required", Rule: "required"},
		{Field: "points", Message: "must be between 1 and 100", Rule: "points_range"},
	}
	got := errs.Error()
	want := "text: is required; points: must be between 1 and 100"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
