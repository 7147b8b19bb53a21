package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/scoring"
	"github.com/examstack/exam-service/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewGradingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) GradingService {
	return &gradingService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *gradingService) ListPendingEssays(ctx context.Context, opts ListOptions) (*PendingAnswerListResponse, error) {
	filters := repositories.PendingAnswerFilters{
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}

	answers, total, err := s.repo.Answer().ListPendingEssays(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending essays: %w", err)
	}

	resp := &PendingAnswerListResponse{
		Answers: make([]PendingAnswerResponse, 0, len(answers)),
		Total:   total,
	}
	for _, answer := range answers {
		rubric, err := decodeRubric(&answer.Question)
		if err != nil {
			s.logger.Warn("Skipping pending answer with unreadable rubric",
				"answer_id", answer.ID,
				"question_id", answer.QuestionID,
				"error", err)
			continue
		}
		resp.Answers = append(resp.Answers, PendingAnswerResponse{
			AnswerID:     answer.ID,
			SessionID:    answer.SessionID,
			UserID:       answer.Session.UserID,
			QuestionID:   answer.QuestionID,
			QuestionText: answer.Question.Text,
			Rubric:       rubric,
			UserAnswer:   json.RawMessage(answer.UserAnswer),
			SubmittedAt:  answer.CreatedAt,
		})
	}
	return resp, nil
}

// GradeAnswer records a manual essay grade. Grading the last ungraded
// answer of a session finalizes the session score, completing the session
// if the student never submitted it; both writes share one transaction.
func (s *gradingService) GradeAnswer(ctx context.Context, answerID uint, graderID string, req *validator.GradeAnswerRequest) (*GradeAnswerResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError("invalid grade request", errs)
	}

	var (
		answer           *models.Answer
		session          *models.ExamSession
		sessionCompleted bool
	)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		answer, err = txRepo.Answer().GetByIDWithQuestion(ctx, nil, answerID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("failed to get answer: %w", err)
		}

		if answer.Question.Type != models.Essay {
			return ErrNotEssayAnswer
		}
		if answer.Graded() {
			return ErrAnswerAlreadyGraded
		}

		rubric, err := decodeRubric(&answer.Question)
		if err != nil {
			return fmt.Errorf("failed to decode rubric: %w", err)
		}

		grades := make([]scoring.CriterionGrade, 0, len(req.Grades))
		for _, g := range req.Grades {
			grades = append(grades, scoring.CriterionGrade{
				Criterion: g.Criterion,
				Points:    g.Points,
			})
		}

		now := time.Now()
		score := scoring.Essay(grades, rubric)
		answer.Score = &score
		answer.Feedback = req.Feedback
		answer.GradedBy = &graderID
		answer.GradedAt = &now

		if err := txRepo.Answer().Update(ctx, nil, answer); err != nil {
			return fmt.Errorf("failed to update answer: %w", err)
		}

		session, sessionCompleted, err = s.finalizeSessionIfGraded(ctx, txRepo, answer.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Essay answer graded",
		"answer_id", answer.ID,
		"session_id", answer.SessionID,
		"graded_by", graderID,
		"score", *answer.Score,
		"session_completed", sessionCompleted)

	s.publishAnswerGraded(ctx, answer, session, graderID)
	if sessionCompleted {
		s.publishSessionCompleted(ctx, session)
	}

	return &GradeAnswerResponse{
		Answer:           *toAnswerResponse(answer),
		SessionCompleted: sessionCompleted,
		SessionScore:     session.Score,
	}, nil
}

// finalizeSessionIfGraded recomputes the session score once every answer is
// graded. It reports whether this call transitioned the session to
// completed.
func (s *gradingService) finalizeSessionIfGraded(ctx context.Context, txRepo repositories.Repository, sessionID uint) (*models.ExamSession, bool, error) {
	session, err := txRepo.Session().GetByIDWithAnswers(ctx, nil, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get exam session: %w", err)
	}

	total, allGraded := sumAnswerScores(session.Answers)
	if !allGraded {
		return session, false, nil
	}

	session.Score = &total
	completed := false
	if session.Status != models.SessionCompleted {
		now := time.Now()
		session.Status = models.SessionCompleted
		session.CompletedAt = &now
		completed = true
	}

	if err := txRepo.Session().Update(ctx, nil, session); err != nil {
		return nil, false, fmt.Errorf("failed to update exam session: %w", err)
	}
	return session, completed, nil
}

func (s *gradingService) publishAnswerGraded(ctx context.Context, answer *models.Answer, session *models.ExamSession, graderID string) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(events.TopicAnswerGraded, events.AnswerGradedData{
		AnswerID:  answer.ID,
		SessionID: answer.SessionID,
		UserID:    session.UserID,
		Score:     *answer.Score,
		GradedBy:  graderID,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish answer graded event",
			"answer_id", answer.ID,
			"error", err)
	}
}

func (s *gradingService) publishSessionCompleted(ctx context.Context, session *models.ExamSession) {
	if s.publisher == nil {
		return
	}

	completedAt := time.Now()
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}
	event := events.NewEvent(events.TopicSessionCompleted, events.SessionCompletedData{
		SessionID:   session.ID,
		UserID:      session.UserID,
		Status:      string(session.Status),
		FinalScore:  session.Score,
		CompletedAt: completedAt,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish session completed event",
			"session_id", session.ID,
			"error", err)
	}
}
