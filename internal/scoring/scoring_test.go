package scoring

import (
	"math/rand"
	"testing"

	"github.com/examstack/exam-service/internal/models"
)

func TestMultipleSelect(t *testing.T) {
	tests := []struct {
		name      string
		correct   []string
		submitted []string
		want      float64
	}{
		{name: "all correct", correct: []string{"A", "B"}, submitted: []string{"A", "B"}, want: 2},
		{name: "empty submission", correct: []string{"A", "B"}, submitted: nil, want: 0},
		{name: "two right one wrong", correct: []string{"A", "C", "D"}, submitted: []string{"A", "B", "C"}, want: 1.5},
		{name: "all wrong clamps at zero", correct: []string{"A"}, submitted: []string{"B", "C", "D"}, want: 0},
		{name: "single wrong among right", correct: []string{"A", "B"}, submitted: []string{"A", "B", "C"}, want: 1.5},
		{name: "duplicate correct counted twice", correct: []string{"A"}, submitted: []string{"A", "A"}, want: 2},
		{name: "duplicate wrong subtracts twice", correct: []string{"A", "B"}, submitted: []string{"A", "B", "C", "C"}, want: 1},
		{name: "empty correct set", correct: nil, submitted: []string{"A"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MultipleSelect(tt.correct, tt.submitted); got != tt.want {
				t.Errorf("MultipleSelect(%v, %v) = %v, want %v", tt.correct, tt.submitted, got, tt.want)
			}
		})
	}
}

func TestMultipleSelect_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	options := []string{"A", "B", "C", "D", "E", "F"}

	for i := 0; i < 200; i++ {
		correct := options[:1+rng.Intn(len(options))]
		var submitted []string
		for j := rng.Intn(8); j > 0; j-- {
			submitted = append(submitted, options[rng.Intn(len(options))])
		}

		if got := MultipleSelect(correct, submitted); got < 0 {
			t.Fatalf("score went negative: MultipleSelect(%v, %v) = %v", correct, submitted, got)
		}
	}

	// Submitting exactly the correct set always yields its size.
	for n := 1; n <= len(options); n++ {
		correct := options[:n]
		if got := MultipleSelect(correct, correct); got != float64(n) {
			t.Errorf("MultipleSelect(C, C) = %v, want %v", got, n)
		}
		if got := MultipleSelect(correct, nil); got != 0 {
			t.Errorf("MultipleSelect(C, []) = %v, want 0", got)
		}
	}
}

func TestMultipleSelect_OrderIndependent(t *testing.T) {
	correct := []string{"A", "C", "D"}
	a := MultipleSelect(correct, []string{"A", "B", "C"})
	b := MultipleSelect(correct, []string{"C", "A", "B"})
	if a != b {
		t.Errorf("submission order changed the score: %v vs %v", a, b)
	}
}

func TestExactMatch(t *testing.T) {
	tests := []struct {
		name      string
		correct   []string
		submitted []string
		want      bool
	}{
		{name: "same order", correct: []string{"A", "B"}, submitted: []string{"A", "B"}, want: true},
		{name: "different order", correct: []string{"A", "B"}, submitted: []string{"B", "A"}, want: true},
		{name: "missing option", correct: []string{"A", "B"}, submitted: []string{"A"}, want: false},
		{name: "extra option", correct: []string{"A"}, submitted: []string{"A", "B"}, want: false},
		{name: "duplicates collapse", correct: []string{"A", "B"}, submitted: []string{"A", "A", "B"}, want: true},
		{name: "both empty", correct: nil, submitted: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExactMatch(tt.correct, tt.submitted); got != tt.want {
				t.Errorf("ExactMatch(%v, %v) = %v, want %v", tt.correct, tt.submitted, got, tt.want)
			}
		})
	}
}

func TestEssay(t *testing.T) {
	rubric := []models.RubricCriterion{
		{Criterion: "clarity", MaxPoints: 5},
		{Criterion: "depth", MaxPoints: 10},
	}

	tests := []struct {
		name   string
		grades []CriterionGrade
		want   float64
	}{
		{name: "no grades", grades: nil, want: 0},
		{name: "simple sum", grades: []CriterionGrade{{Criterion: "clarity", Points: 3}, {Criterion: "depth", Points: 7}}, want: 10},
		{name: "capped at criterion max", grades: []CriterionGrade{{Criterion: "clarity", Points: 9}}, want: 5},
		{name: "repeated criterion sums then caps", grades: []CriterionGrade{{Criterion: "depth", Points: 6}, {Criterion: "depth", Points: 6}}, want: 10},
		{name: "unknown criterion ignored", grades: []CriterionGrade{{Criterion: "style", Points: 4}}, want: 0},
		{name: "negative grade floored", grades: []CriterionGrade{{Criterion: "clarity", Points: -2}, {Criterion: "depth", Points: 4}}, want: 4},
		{name: "missing criterion contributes zero", grades: []CriterionGrade{{Criterion: "clarity", Points: 2}}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Essay(tt.grades, rubric); got != tt.want {
				t.Errorf("Essay(%v) = %v, want %v", tt.grades, got, tt.want)
			}
		})
	}
}

func TestEssay_NeverExceedsRubricTotal(t *testing.T) {
	rubric := []models.RubricCriterion{
		{Criterion: "clarity", MaxPoints: 5},
		{Criterion: "depth", MaxPoints: 10},
		{Criterion: "sources", MaxPoints: 3},
	}
	rubricTotal := 18.0

	rng := rand.New(rand.NewSource(7))
	criteria := []string{"clarity", "depth", "sources", "style", "length"}

	for i := 0; i < 200; i++ {
		var grades []CriterionGrade
		for j := rng.Intn(10); j > 0; j-- {
			grades = append(grades, CriterionGrade{
				Criterion: criteria[rng.Intn(len(criteria))],
				Points:    rng.Float64()*30 - 5,
			})
		}

		got := Essay(grades, rubric)
		if got < 0 || got > rubricTotal {
			t.Fatalf("Essay(%v) = %v, outside [0, %v]", grades, got, rubricTotal)
		}
	}
}
