package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

type studentService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) StudentService {
	return &studentService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *studentService) List(ctx context.Context, query string, opts ListOptions) (*StudentListResponse, error) {
	role := models.RoleStudent
	filters := repositories.UserFilters{
		Role:   &role,
		Query:  query,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	resp := &StudentListResponse{
		Students: make([]StudentResponse, 0, len(users)),
		Total:    total,
	}
	for _, u := range users {
		resp.Students = append(resp.Students, StudentResponse{
			ID:        u.ID,
			Email:     u.Email,
			FullName:  u.FullName,
			CreatedAt: u.CreatedAt,
		})
	}
	return resp, nil
}

func (s *studentService) GetStats(ctx context.Context, userID string) (*repositories.StudentStats, error) {
	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	stats, err := s.repo.User().GetStudentStats(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student stats: %w", err)
	}
	return stats, nil
}
