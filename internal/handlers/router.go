package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/config"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	sessionHandler  *SessionHandler
	gradingHandler  *GradingHandler
	questionHandler *QuestionHandler
	studentHandler  *StudentHandler
	authMiddleware  *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	jwtSecret string,
	userRepo repositories.UserRepository,
) *HandlerManager {
	tokens := NewTokenManager(jwtSecret)

	return &HandlerManager{
		authHandler:     NewAuthHandler(casdoorConfig, tokens, userRepo, logger),
		sessionHandler:  NewSessionHandler(serviceManager.Session(), validator, logger),
		gradingHandler:  NewGradingHandler(serviceManager.Grading(), validator, logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), validator, logger),
		studentHandler:  NewStudentHandler(serviceManager.Student(), serviceManager.Export(), logger),
		authMiddleware:  NewAuthMiddleware(tokens, userRepo),
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Identity exchange is the only unauthenticated endpoint.
	v1.POST("/auth/callback", hm.authHandler.Callback)

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.RequireAuth())
	{
		authed.GET("/auth/me", hm.authHandler.Me)

		sessions := authed.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/answers", hm.sessionHandler.SubmitAnswer)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
		}

		// Admin routes re-check the role against the store on every request.
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireAdmin())
		{
			admin.GET("/sessions/:id", hm.sessionHandler.GetSession)

			admin.GET("/answers/pending", hm.gradingHandler.ListPendingAnswers)
			admin.POST("/answers/:id/grade", hm.gradingHandler.GradeAnswer)

			admin.POST("/questions", hm.questionHandler.CreateQuestion)
			admin.GET("/questions", hm.questionHandler.ListQuestions)
			admin.GET("/questions/:id", hm.questionHandler.GetQuestion)
			admin.PUT("/questions/:id", hm.questionHandler.UpdateQuestion)
			admin.DELETE("/questions/:id", hm.questionHandler.DeleteQuestion)

			admin.POST("/categories", hm.questionHandler.CreateCategory)
			admin.GET("/categories", hm.questionHandler.ListCategories)

			admin.GET("/students", hm.studentHandler.ListStudents)
			admin.GET("/students/export", hm.studentHandler.ExportStudents)
			admin.GET("/students/:user_id/stats", hm.studentHandler.GetStudentStats)
		}
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "exam-service",
	})
}
