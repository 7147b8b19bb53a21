package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

const exportPageSize = 200

// ExportStudents renders every student with their session aggregates as an
// xlsx workbook.
func (s *exportService) ExportStudents(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Full Name", "Email", "Sessions", "Completed", "Average Score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	role := models.RoleStudent
	row := 2
	for offset := 0; ; offset += exportPageSize {
		users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
			Role:   &role,
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list students: %w", err)
		}
		if len(users) == 0 {
			break
		}

		for _, u := range users {
			stats, err := s.repo.User().GetStudentStats(ctx, nil, u.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to get stats for student %s: %w", u.ID, err)
			}

			values := []interface{}{u.ID, u.FullName, u.Email, stats.SessionCount, stats.CompletedSessions}
			if stats.AverageScore != nil {
				values = append(values, *stats.AverageScore)
			} else {
				values = append(values, "")
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		if len(users) < exportPageSize {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Student export generated", "rows", row-2)
	return buf.Bytes(), nil
}
