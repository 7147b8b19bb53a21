package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// stubUserRepo serves role lookups from a fixed map.
type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByExternalID(_ context.Context, _ *gorm.DB, externalID string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpsertByExternalID(_ context.Context, _ *gorm.DB, user *models.User) (*models.User, error) {
	return user, nil
}

func (s *stubUserRepo) List(_ context.Context, _ *gorm.DB, _ repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) GetStudentStats(_ context.Context, _ *gorm.DB, userID string) (*repositories.StudentStats, error) {
	return &repositories.StudentStats{UserID: userID}, nil
}

func newTestRouter(users map[string]*models.User) (*gin.Engine, *TokenManager) {
	gin.SetMode(gin.TestMode)

	tokens := NewTokenManager("test-secret")
	am := NewAuthMiddleware(tokens, &stubUserRepo{users: users})

	router := gin.New()
	authed := router.Group("", am.RequireAuth())
	authed.GET("/me", func(c *gin.Context) {
		userID, _ := c.Get(ContextUserID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	authed.GET("/admin", am.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, tokens
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := doRequest(router, "/me", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := doRequest(router, "/me", "not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	router, tokens := newTestRouter(nil)

	token, err := tokens.Issue("student-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := doRequest(router, "/me", token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["user_id"] != "student-1" {
		t.Errorf("user_id = %s, want student-1", body["user_id"])
	}
}

func TestRequireAdmin_StudentForbidden(t *testing.T) {
	users := map[string]*models.User{
		"student-1": {ID: "student-1", Role: models.RoleStudent},
	}
	router, tokens := newTestRouter(users)

	token, _ := tokens.Issue("student-1")
	w := doRequest(router, "/admin", token)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Message != "Admin access required" {
		t.Errorf("message = %q, want %q", body.Message, "Admin access required")
	}
}

func TestRequireAdmin_RoleReadFromStore(t *testing.T) {
	users := map[string]*models.User{
		"user-1": {ID: "user-1", Role: models.RoleAdmin},
	}
	router, tokens := newTestRouter(users)

	token, _ := tokens.Issue("user-1")
	if w := doRequest(router, "/admin", token); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}

	// Demote the user; the same token must lose admin access immediately.
	users["user-1"].Role = models.RoleStudent
	if w := doRequest(router, "/admin", token); w.Code != http.StatusForbidden {
		t.Fatalf("status after demotion = %d, want 403", w.Code)
	}
}

func TestRequireAdmin_DeletedUser(t *testing.T) {
	users := map[string]*models.User{}
	router, tokens := newTestRouter(users)

	token, _ := tokens.Issue("ghost")
	if w := doRequest(router, "/admin", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for deleted user", w.Code)
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret-a")

	signed, err := tokens.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user id = %s, want user-42", userID)
	}

	// A token signed with a different secret must not verify.
	other := NewTokenManager("secret-b")
	if _, err := other.Verify(signed); err == nil {
		t.Error("token verified under the wrong secret")
	}
}
