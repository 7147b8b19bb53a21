package services

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// mockRepository is an in-memory repositories.Repository for service tests.
type mockRepository struct {
	mu sync.Mutex

	sessions   map[uint]*models.ExamSession
	answers    map[uint]*models.Answer
	questions  map[uint]*models.Question
	categories map[uint]*models.Category
	users      map[string]*models.User

	nextSessionID uint
	nextAnswerID  uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions:      make(map[uint]*models.ExamSession),
		answers:       make(map[uint]*models.Answer),
		questions:     make(map[uint]*models.Question),
		categories:    make(map[uint]*models.Category),
		users:         make(map[string]*models.User),
		nextSessionID: 1,
		nextAnswerID:  1,
	}
}

func (m *mockRepository) Session() repositories.SessionRepository   { return &mockSessionRepo{m} }
func (m *mockRepository) Answer() repositories.AnswerRepository     { return &mockAnswerRepo{m} }
func (m *mockRepository) Question() repositories.QuestionRepository { return &mockQuestionRepo{m} }
func (m *mockRepository) Category() repositories.CategoryRepository { return &mockCategoryRepo{m} }
func (m *mockRepository) User() repositories.UserRepository         { return &mockUserRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// addQuestion seeds a question directly.
func (m *mockRepository) addQuestion(q *models.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
}

// storedSession returns a detached copy so tests can inspect stored state.
func (m *mockRepository) storedSession(id uint) models.ExamSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.sessions[id]
}

func (m *mockRepository) sessionAnswers(sessionID uint) []models.Answer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Answer
	for _, a := range m.answers {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ===== SESSION =====

type mockSessionRepo struct{ m *mockRepository }

func (r *mockSessionRepo) Create(_ context.Context, _ *gorm.DB, session *models.ExamSession) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	session.ID = r.m.nextSessionID
	r.m.nextSessionID++
	stored := *session
	r.m.sessions[session.ID] = &stored
	return nil
}

func (r *mockSessionRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.ExamSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	session, ok := r.m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *session
	return &out, nil
}

func (r *mockSessionRepo) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	session, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	session.Answers = r.m.sessionAnswers(id)
	return session, nil
}

func (r *mockSessionRepo) Update(_ context.Context, _ *gorm.DB, session *models.ExamSession) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *session
	stored.Answers = nil
	r.m.sessions[session.ID] = &stored
	return nil
}

func (r *mockSessionRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uint, status models.SessionStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	session, ok := r.m.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.Status = status
	return nil
}

func (r *mockSessionRepo) List(_ context.Context, _ *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ExamSession
	for _, s := range r.m.sessions {
		if filters.UserID != nil && s.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && s.Status != *filters.Status {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockSessionRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	filters.UserID = &userID
	return r.List(ctx, tx, filters)
}

// ===== ANSWER =====

type mockAnswerRepo struct{ m *mockRepository }

func (r *mockAnswerRepo) Create(_ context.Context, _ *gorm.DB, answer *models.Answer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.answers {
		if a.SessionID == answer.SessionID && a.QuestionID == answer.QuestionID {
			return gorm.ErrDuplicatedKey
		}
	}
	answer.ID = r.m.nextAnswerID
	r.m.nextAnswerID++
	stored := *answer
	r.m.answers[answer.ID] = &stored
	return nil
}

func (r *mockAnswerRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Answer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	answer, ok := r.m.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *answer
	return &out, nil
}

func (r *mockAnswerRepo) GetByIDWithQuestion(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	answer, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if q, ok := r.m.questions[answer.QuestionID]; ok {
		answer.Question = *q
	}
	return answer, nil
}

func (r *mockAnswerRepo) Update(_ context.Context, _ *gorm.DB, answer *models.Answer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.answers[answer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *answer
	stored.Question = models.Question{}
	stored.Session = models.ExamSession{}
	r.m.answers[answer.ID] = &stored
	return nil
}

func (r *mockAnswerRepo) GetBySession(_ context.Context, _ *gorm.DB, sessionID uint) ([]*models.Answer, error) {
	answers := r.m.sessionAnswers(sessionID)
	out := make([]*models.Answer, len(answers))
	for i := range answers {
		out[i] = &answers[i]
	}
	return out, nil
}

func (r *mockAnswerRepo) ListPendingEssays(_ context.Context, _ *gorm.DB, filters repositories.PendingAnswerFilters) ([]*models.Answer, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Answer
	for _, a := range r.m.answers {
		q, ok := r.m.questions[a.QuestionID]
		if !ok || q.Type != models.Essay || a.Score != nil {
			continue
		}
		copied := *a
		copied.Question = *q
		if s, ok := r.m.sessions[a.SessionID]; ok {
			copied.Session = *s
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== QUESTION =====

type mockQuestionRepo struct{ m *mockRepository }

func (r *mockQuestionRepo) Create(_ context.Context, _ *gorm.DB, question *models.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if question.ID == 0 {
		question.ID = uint(len(r.m.questions) + 1)
	}
	stored := *question
	r.m.questions[question.ID] = &stored
	return nil
}

func (r *mockQuestionRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	question, ok := r.m.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *question
	return &out, nil
}

func (r *mockQuestionRepo) GetByIDWithCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *mockQuestionRepo) Update(_ context.Context, _ *gorm.DB, question *models.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *question
	r.m.questions[question.ID] = &stored
	return nil
}

func (r *mockQuestionRepo) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.questions, id)
	return nil
}

func (r *mockQuestionRepo) List(_ context.Context, _ *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Question
	for _, q := range r.m.questions {
		if filters.Type != nil && q.Type != *filters.Type {
			continue
		}
		if filters.CategoryID != nil && q.CategoryID != *filters.CategoryID {
			continue
		}
		copied := *q
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockQuestionRepo) Count(_ context.Context, _ *gorm.DB) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.questions)), nil
}

// ===== CATEGORY =====

type mockCategoryRepo struct{ m *mockRepository }

func (r *mockCategoryRepo) Create(_ context.Context, _ *gorm.DB, category *models.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.categories {
		if c.Slug == category.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if category.ID == 0 {
		category.ID = uint(len(r.m.categories) + 1)
	}
	stored := *category
	r.m.categories[category.ID] = &stored
	return nil
}

func (r *mockCategoryRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	category, ok := r.m.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *category
	return &out, nil
}

func (r *mockCategoryRepo) GetBySlug(_ context.Context, _ *gorm.DB, slug string) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.categories {
		if c.Slug == slug {
			out := *c
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCategoryRepo) List(_ context.Context, _ *gorm.DB) ([]*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Category
	for _, c := range r.m.categories {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== USER =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *user
	return &out, nil
}

func (r *mockUserRepo) GetByExternalID(_ context.Context, _ *gorm.DB, externalID string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.ExternalID == externalID {
			out := *u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) UpsertByExternalID(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	for _, u := range r.m.users {
		if u.ExternalID == user.ExternalID {
			u.Email = user.Email
			u.FullName = user.FullName
			out := *u
			r.m.mu.Unlock()
			return &out, nil
		}
	}
	stored := *user
	r.m.users[user.ID] = &stored
	out := stored
	r.m.mu.Unlock()
	return &out, nil
}

func (r *mockUserRepo) List(_ context.Context, _ *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, u := range r.m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) GetStudentStats(_ context.Context, _ *gorm.DB, userID string) (*repositories.StudentStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stats := &repositories.StudentStats{UserID: userID}
	var sum float64
	var scored int64
	for _, s := range r.m.sessions {
		if s.UserID != userID {
			continue
		}
		stats.SessionCount++
		if s.Status == models.SessionCompleted {
			stats.CompletedSessions++
		}
		if s.Score != nil {
			sum += *s.Score
			scored++
		}
	}
	if scored > 0 {
		avg := sum / float64(scored)
		stats.AverageScore = &avg
	}
	return stats, nil
}
