package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
	exportService  services.ExportService
}

func NewStudentHandler(
	studentService services.StudentService,
	exportService services.ExportService,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		exportService:  exportService,
	}
}

// ListStudents returns students, optionally filtered by a name/email query.
// @Summary List students
// @Tags students
// @Produce json
// @Param q query string false "Name or email search"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.StudentListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context(), c.Query("q"), parseListOptions(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// GetStudentStats returns one student's session aggregates.
// @Summary Get student statistics
// @Tags students
// @Produce json
// @Param user_id path string true "Student ID"
// @Success 200 {object} repositories.StudentStats
// @Failure 404 {object} ErrorResponse
// @Router /admin/students/{user_id}/stats [get]
func (h *StudentHandler) GetStudentStats(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid user_id parameter",
		})
		return
	}

	stats, err := h.studentService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportStudents streams an xlsx workbook of all students and their
// aggregates.
// @Summary Export students as xlsx
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /admin/students/export [get]
func (h *StudentHandler) ExportStudents(c *gin.Context) {
	h.LogRequest(c, "Exporting students")

	data, err := h.exportService.ExportStudents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("students-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		data)
}
