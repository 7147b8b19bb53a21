package services

import (
	"context"
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

type sessionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	// sessionDuration is how long a session stays open once started.
	sessionDuration time.Duration
}

func NewSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, sessionDuration time.Duration) SessionService {
	return &sessionService{
		repo:            repo,
		db:              db,
		logger:          logger,
		validator:       validator,
		publisher:       publisher,
		sessionDuration: sessionDuration,
	}
}

// ===== CORE SESSION OPERATIONS =====

func (s *sessionService) Create(ctx context.Context, userID string) (*SessionResponse, error) {
	s.logger.Info("Creating exam session", "user_id", userID)

	questionCount, err := s.repo.Question().Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	now := time.Now()
	session := &models.ExamSession{
		UserID:    userID,
		Status:    models.SessionInProgress,
		StartedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create exam session: %w", err)
	}

	s.logger.Info("Exam session created",
		"session_id", session.ID,
		"user_id", userID,
		"expires_at", session.ExpiresAt)

	resp := toSessionResponse(session)
	resp.QuestionCount = &questionCount
	return resp, nil
}

func (s *sessionService) GetByID(ctx context.Context, sessionID uint, userID string, isAdmin bool) (*SessionResponse, error) {
	session, err := s.repo.Session().GetByIDWithAnswers(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get exam session: %w", err)
	}

	if session.UserID != userID && !isAdmin {
		return nil, NewPermissionError(userID, sessionID, "session", "read", "not owned by user")
	}

	// Lazy expiry: an overdue in-progress session is marked expired on
	// read. Reads still succeed, only mutations fail afterwards.
	if session.Status == models.SessionInProgress && session.IsExpired(time.Now()) {
		if err := s.expireSession(ctx, session); err != nil {
			return nil, err
		}
	}

	return toSessionResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, userID string, opts ListOptions) (*SessionListResponse, error) {
	filters := repositories.SessionFilters{
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}

	sessions, total, err := s.repo.Session().GetByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exam sessions: %w", err)
	}

	resp := &SessionListResponse{
		Sessions: make([]SessionResponse, 0, len(sessions)),
		Total:    total,
	}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, *toSessionResponse(session))
	}
	return resp, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID uint, userID string, req *validator.SubmitAnswerRequest) (*AnswerResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError("invalid answer submission", errs)
	}

	// The expiry check runs before the insert transaction so the expired
	// status is committed even though the submission itself fails.
	if err := s.checkSessionWritable(ctx, sessionID, userID, "submit answer"); err != nil {
		return nil, err
	}

	var answer *models.Answer
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		session, err := txRepo.Session().GetByID(ctx, nil, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to get exam session: %w", err)
		}
		if session.Status != models.SessionInProgress {
			return statusError(session.Status)
		}

		question, err := txRepo.Question().GetByID(ctx, nil, req.QuestionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}

		answer, err = s.buildAnswer(session, question, req)
		if err != nil {
			return err
		}

		if err := txRepo.Answer().Create(ctx, nil, answer); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrAnswerAlreadySubmitted
			}
			return fmt.Errorf("failed to create answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Answer submitted",
		"session_id", sessionID,
		"question_id", req.QuestionID,
		"user_id", userID,
		"graded", answer.Graded())

	return toAnswerResponse(answer), nil
}

func (s *sessionService) Submit(ctx context.Context, sessionID uint, userID string) (*SessionResponse, error) {
	if err := s.checkSessionWritable(ctx, sessionID, userID, "submit"); err != nil {
		return nil, err
	}

	var session *models.ExamSession
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		session, err = txRepo.Session().GetByIDWithAnswers(ctx, nil, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to get exam session: %w", err)
		}
		if session.Status != models.SessionInProgress {
			return statusError(session.Status)
		}

		now := time.Now()
		session.Status = models.SessionCompleted
		session.CompletedAt = &now

		// The persisted total sums only graded answers; ungraded essays
		// count as zero until the grading flow recomputes the final score.
		total, _ := sumAnswerScores(session.Answers)
		session.Score = &total

		return txRepo.Session().Update(ctx, nil, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exam session submitted",
		"session_id", session.ID,
		"user_id", userID,
		"score", session.Score)

	s.publishSessionCompleted(ctx, session)

	return toSessionResponse(session), nil
}

// ===== INTERNAL HELPERS =====

// checkSessionWritable verifies ownership and active status, persisting the
// expired transition before reporting ErrSessionExpired.
func (s *sessionService) checkSessionWritable(ctx context.Context, sessionID uint, userID, action string) error {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get exam session: %w", err)
	}

	if session.UserID != userID {
		return NewPermissionError(userID, sessionID, "session", action, "not owned by user")
	}

	if session.Status != models.SessionInProgress {
		return statusError(session.Status)
	}

	if session.IsExpired(time.Now()) {
		if err := s.expireSession(ctx, session); err != nil {
			return err
		}
		return ErrSessionExpired
	}

	return nil
}

func (s *sessionService) expireSession(ctx context.Context, session *models.ExamSession) error {
	if err := s.repo.Session().UpdateStatus(ctx, nil, session.ID, models.SessionExpired); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	session.Status = models.SessionExpired
	s.logger.Info("Exam session expired", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

// buildAnswer validates the submission shape against the question type and
// grades multiple-select answers immediately.
func (s *sessionService) buildAnswer(session *models.ExamSession, question *models.Question, req *validator.SubmitAnswerRequest) (*models.Answer, error) {
	answer := &models.Answer{
		SessionID:  session.ID,
		QuestionID: question.ID,
		UserAnswer: []byte(req.Answer),
	}

	switch question.Type {
	case models.MultipleSelect:
		submitted, err := decodeOptionList(req.Answer)
		if err != nil {
			return nil, NewValidationError("multiple-select answer must be a JSON array of strings", nil)
		}
		correct, err := decodeCorrectAnswers(question)
		if err != nil {
			return nil, fmt.Errorf("failed to decode correct answers for question %d: %w", question.ID, err)
		}
		score := scoring.MultipleSelect(correct, submitted)
		isCorrect := scoring.ExactMatch(correct, submitted)
		answer.Score = &score
		answer.IsCorrect = &isCorrect

	case models.Essay:
		if _, err := decodeEssayText(req.Answer); err != nil {
			return nil, NewValidationError("essay answer must be a JSON string", nil)
		}
		// Score stays nil until an admin grades it.

	default:
		return nil, fmt.Errorf("unsupported question type %q", question.Type)
	}

	return answer, nil
}

func (s *sessionService) publishSessionCompleted(ctx context.Context, session *models.ExamSession) {
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

// statusError maps a non-active session status to its sentinel error.
func statusError(status models.SessionStatus) error {
	if status == models.SessionExpired {
		return ErrSessionExpired
	}
	return ErrSessionNotActive
}

// sumAnswerScores totals all graded answers and reports whether every
// answer has a score.
func sumAnswerScores(answers []models.Answer) (float64, bool) {
	var total float64
	allGraded := true
	for _, a := range answers {
		if a.Score == nil {
			allGraded = false
			continue
		}
		total += *a.Score
	}
	return total, allGraded
}
