package services

import (
	"encoding/json"
	"fmt"

	"github.com/examstack/exam-service/internal/models"
)

// ===== RESPONSE CONVERTERS =====

func toSessionResponse(session *models.ExamSession) *SessionResponse {
	resp := &SessionResponse{
		ID:          session.ID,
		UserID:      session.UserID,
		Status:      session.Status,
		Score:       session.Score,
		StartedAt:   session.StartedAt,
		ExpiresAt:   session.ExpiresAt,
		CompletedAt: session.CompletedAt,
	}
	for i := range session.Answers {
		resp.Answers = append(resp.Answers, *toAnswerResponse(&session.Answers[i]))
	}
	return resp
}

func toAnswerResponse(answer *models.Answer) *AnswerResponse {
	return &AnswerResponse{
		ID:         answer.ID,
		SessionID:  answer.SessionID,
		QuestionID: answer.QuestionID,
		UserAnswer: json.RawMessage(answer.UserAnswer),
		Score:      answer.Score,
		IsCorrect:  answer.IsCorrect,
		Feedback:   answer.Feedback,
		GradedBy:   answer.GradedBy,
		GradedAt:   answer.GradedAt,
		CreatedAt:  answer.CreatedAt,
	}
}

// ===== PAYLOAD DECODERS =====

// decodeOptionList parses a multiple-select submission, a JSON array of
// option strings.
func decodeOptionList(raw json.RawMessage) ([]string, error) {
	var options []string
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// decodeEssayText parses an essay submission, a JSON string.
func decodeEssayText(raw json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", err
	}
	return text, nil
}

// decodeCorrectAnswers reads the stored answer key of a multiple-select
// question.
func decodeCorrectAnswers(question *models.Question) ([]string, error) {
	if len(question.CorrectAnswer) == 0 {
		return nil, fmt.Errorf("question %d has no answer key", question.ID)
	}
	var correct []string
	if err := json.Unmarshal(question.CorrectAnswer, &correct); err != nil {
		return nil, err
	}
	return correct, nil
}

// decodeRubric reads the stored rubric of an essay question.
func decodeRubric(question *models.Question) ([]models.RubricCriterion, error) {
	if len(question.Rubric) == 0 {
		return nil, fmt.Errorf("question %d has no rubric", question.ID)
	}
	var rubric []models.RubricCriterion
	if err := json.Unmarshal(question.Rubric, &rubric); err != nil {
		return nil, err
	}
	return rubric, nil
}
