package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *validator.QuestionCreateRequest, creatorID string) (*QuestionResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError("invalid question", errs)
	}
	if err := validateQuestionContent(req.Type, req.CorrectAnswers, req.Rubric); err != nil {
		return nil, err
	}

	if _, err := s.repo.Category().GetByID(ctx, nil, req.CategoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	question := &models.Question{
		Type:       req.Type,
		Text:       req.Text,
		Points:     req.Points,
		CategoryID: req.CategoryID,
		CreatedBy:  creatorID,
	}
	if err := encodeQuestionContent(question, req.CorrectAnswers, req.Rubric); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"type", question.Type,
		"created_by", creatorID)

	return toQuestionResponse(question), nil
}

func (s *questionService) GetByID(ctx context.Context, questionID uint) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByIDWithCategory(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return toQuestionResponse(question), nil
}

func (s *questionService) Update(ctx context.Context, questionID uint, req *validator.QuestionUpdateRequest) (*QuestionResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError("invalid question update", errs)
	}

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, nil, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		question.CategoryID = *req.CategoryID
	}

	// The question type is immutable; content updates must match it.
	if req.CorrectAnswers != nil || req.Rubric != nil {
		if err := validateQuestionContent(question.Type, req.CorrectAnswers, req.Rubric); err != nil {
			return nil, err
		}
		if err := encodeQuestionContent(question, req.CorrectAnswers, req.Rubric); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "question_id", question.ID)
	return toQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, questionID uint) error {
	if err := s.repo.Question().Delete(ctx, nil, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.logger.Info("Question deleted", "question_id", questionID)
	return nil
}

func (s *questionService) List(ctx context.Context, filters QuestionListFilters) (*QuestionListResponse, error) {
	repoFilters := repositories.QuestionFilters{
		Type:       filters.Type,
		CategoryID: filters.CategoryID,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}

	questions, total, err := s.repo.Question().List(ctx, nil, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	resp := &QuestionListResponse{
		Questions: make([]QuestionResponse, 0, len(questions)),
		Total:     total,
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, *toQuestionResponse(q))
	}
	return resp, nil
}

func (s *questionService) CreateCategory(ctx context.Context, req *validator.CategoryCreateRequest) (*models.Category, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError("invalid category", errs)
	}

	category := &models.Category{
		Name: req.Name,
		Slug: req.Slug,
	}
	if err := s.repo.Category().Create(ctx, nil, category); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, NewValidationError("category slug already exists", nil)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *questionService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ===== HELPERS =====

// validateQuestionContent enforces the type/content pairing: multiple-select
// questions carry an answer key, essays carry a rubric.
func validateQuestionContent(qType models.QuestionType, correctAnswers []string, rubric []validator.RubricCriterionRequest) error {
	switch qType {
	case models.MultipleSelect:
		if len(correctAnswers) == 0 {
			return NewValidationError("multiple-select questions require correct_answers", nil)
		}
		if len(rubric) > 0 {
			return NewValidationError("multiple-select questions cannot have a rubric", nil)
		}
	case models.Essay:
		if len(rubric) == 0 {
			return NewValidationError("essay questions require a rubric", nil)
		}
		if len(correctAnswers) > 0 {
			return NewValidationError("essay questions cannot have correct_answers", nil)
		}
	}
	return nil
}

func encodeQuestionContent(question *models.Question, correctAnswers []string, rubric []validator.RubricCriterionRequest) error {
	if len(correctAnswers) > 0 {
		data, err := json.Marshal(correctAnswers)
		if err != nil {
			return fmt.Errorf("failed to encode correct answers: %w", err)
		}
		question.CorrectAnswer = data
	}
	if len(rubric) > 0 {
		criteria := make([]models.RubricCriterion, 0, len(rubric))
		for _, r := range rubric {
			criteria = append(criteria, models.RubricCriterion{
				Criterion: r.Criterion,
				MaxPoints: r.MaxPoints,
			})
		}
		data, err := json.Marshal(criteria)
		if err != nil {
			return fmt.Errorf("failed to encode rubric: %w", err)
		}
		question.Rubric = data
	}
	return nil
}

func toQuestionResponse(question *models.Question) *QuestionResponse {
	resp := &QuestionResponse{
		ID:         question.ID,
		Type:       question.Type,
		Text:       question.Text,
		Points:     question.Points,
		CategoryID: question.CategoryID,
		CreatedBy:  question.CreatedBy,
		CreatedAt:  question.CreatedAt,
	}
	if question.Category.ID != 0 {
		resp.CategoryName = question.Category.Name
	}
	if len(question.CorrectAnswer) > 0 {
		// Decode errors leave the field empty rather than failing the read.
		_ = json.Unmarshal(question.CorrectAnswer, &resp.CorrectAnswers)
	}
	if len(question.Rubric) > 0 {
		_ = json.Unmarshal(question.Rubric, &resp.Rubric)
	}
	return resp
}
