package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

func serveServiceError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewBaseHandler(logger)
	h.handleServiceError(c, err)
	return w
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not essay answer is a bad request", services.ErrNotEssayAnswer, http.StatusBadRequest},
		{"validation error", services.NewValidationError("bad input", nil), http.StatusBadRequest},
		{"permission error", services.NewPermissionError("u1", 1, "session", "read", "not owner"), http.StatusForbidden},
		{"session not found", services.ErrSessionNotFound, http.StatusNotFound},
		{"answer not found", services.ErrAnswerNotFound, http.StatusNotFound},
		{"session expired", services.ErrSessionExpired, http.StatusConflict},
		{"duplicate answer", services.ErrAnswerAlreadySubmitted, http.StatusConflict},
		{"already graded", services.ErrAnswerAlreadyGraded, http.StatusConflict},
		{"unknown error", errors.New("database on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serveServiceError(tt.err); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestParseListOptions(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"page converts to offset", "page=3&limit=10", 10, 20},
		{"first page", "page=1&limit=10", 10, 0},
		{"raw offset", "offset=40&limit=10", 10, 40},
		{"page wins over offset", "page=2&offset=99&limit=10", 10, 10},
		{"invalid limit falls back", "page=2&limit=abc", 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			opts := parseListOptions(c)
			if opts.Limit != tt.wantLimit || opts.Offset != tt.wantOffset {
				t.Errorf("opts = %+v, want limit %d offset %d", opts, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
