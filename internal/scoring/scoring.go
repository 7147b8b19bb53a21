// Package scoring computes numeric scores for answers. Functions here are
// deterministic, side-effect free and order-independent over their inputs;
// everything stateful (persistence, session transitions) lives in services.
package scoring

import (
	"math"

	"github.com/examstack/exam-service/internal/models"
)

// MultipleSelect scores a submitted option list against the correct set:
// +1.0 for each submitted option in the set, -0.5 for each that is not,
// clamped at 0. Duplicate submissions are scored per occurrence, not
// deduplicated, so a repeated wrong option subtracts again; that is the
// scoring rule, callers must not pre-dedupe. The question's declared points
// are not multiplied in here.
func MultipleSelect(correct []string, submitted []string) float64 {
	correctSet := make(map[string]struct{}, len(correct))
	for _, c := range correct {
		correctSet[c] = struct{}{}
	}

	score := 0.0
	for _, s := range submitted {
		if _, ok := correctSet[s]; ok {
			score += 1.0
		} else {
			score -= 0.5
		}
	}

	return math.Max(0, score)
}

// ExactMatch reports whether the submitted options are exactly the correct
// set. This is recorded independently of the score: a partially correct
// submission can score above zero and still not be an exact match.
func ExactMatch(correct []string, submitted []string) bool {
	correctSet := make(map[string]struct{}, len(correct))
	for _, c := range correct {
		correctSet[c] = struct{}{}
	}
	submittedSet := make(map[string]struct{}, len(submitted))
	for _, s := range submitted {
		submittedSet[s] = struct{}{}
	}

	if len(correctSet) != len(submittedSet) {
		return false
	}
	for c := range correctSet {
		if _, ok := submittedSet[c]; !ok {
			return false
		}
	}
	return true
}

// CriterionGrade is one manually awarded grade against a rubric criterion.
type CriterionGrade struct {
	Criterion string  `json:"criterion"`
	Points    float64 `json:"points"`
}

// Essay totals rubric-based grades: each grade is floored at 0, grades are
// summed per criterion, each criterion's sum is capped at its rubric maximum
// and criteria absent from the rubric are ignored. Criteria with no grades
// contribute 0.
func Essay(grades []CriterionGrade, rubric []models.RubricCriterion) float64 {
	maxByCriterion := make(map[string]float64, len(rubric))
	for _, rc := range rubric {
		maxByCriterion[rc.Criterion] = rc.MaxPoints
	}

	sumByCriterion := make(map[string]float64, len(grades))
	for _, g := range grades {
		if _, ok := maxByCriterion[g.Criterion]; !ok {
			continue
		}
		sumByCriterion[g.Criterion] += math.Max(0, g.Points)
	}

	total := 0.0
	for criterion, sum := range sumByCriterion {
		total += math.Min(sum, maxByCriterion[criterion])
	}
	return total
}
