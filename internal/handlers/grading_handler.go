package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	validator      *validator.Validator
}

func NewGradingHandler(
	gradingService services.GradingService,
	validator *validator.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		validator:      validator,
	}
}

// ListPendingAnswers returns essay answers awaiting a manual grade, oldest
// first.
// @Summary List pending essay answers
// @Tags grading
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} services.PendingAnswerListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/answers/pending [get]
func (h *GradingHandler) ListPendingAnswers(c *gin.Context) {
	answers, err := h.gradingService.ListPendingEssays(c.Request.Context(), parseListOptions(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// GradeAnswer applies a manual rubric grade to one essay answer.
// @Summary Grade an essay answer
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Answer ID"
// @Param grade body validator.GradeAnswerRequest true "Rubric grades"
// @Success 200 {object} services.GradeAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/answers/{id}/grade [post]
func (h *GradingHandler) GradeAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	graderID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req validator.GradeAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Grading essay answer", "answer_id", id, "graded_by", graderID)

	result, err := h.gradingService.GradeAnswer(c.Request.Context(), id, graderID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
