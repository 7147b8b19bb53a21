package handlers

import (
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examstack/exam-service/internal/config"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/utils"
)

// AuthHandler exchanges identity-provider logins for service tokens. The
// provider is only consulted here; every other endpoint trusts the
// service's own tokens.
type AuthHandler struct {
	BaseHandler
	client   *casdoorsdk.Client
	tokens   *TokenManager
	userRepo repositories.UserRepository
}

// CallbackRequest carries the OAuth authorization code from the login UI.
type CallbackRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

// TokenResponse is the service token returned after a successful exchange.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func NewAuthHandler(cfg config.CasdoorConfig, tokens *TokenManager, userRepo repositories.UserRepository, logger utils.Logger) *AuthHandler {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
		tokens:      tokens,
		userRepo:    userRepo,
	}
}

// Callback completes the OAuth code exchange, upserts the user and issues a
// service token.
// @Summary Exchange login code for a service token
// @Tags auth
// @Accept json
// @Produce json
// @Param callback body CallbackRequest true "OAuth callback data"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	oauthToken, err := h.client.GetOAuthToken(req.Code, req.State)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Code exchange failed",
		})
		return
	}

	claims, err := h.client.ParseJwtToken(oauthToken.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid identity token",
		})
		return
	}

	user, err := h.userRepo.UpsertByExternalID(c.Request.Context(), nil, &models.User{
		ID:         uuid.New().String(),
		ExternalID: claims.User.Id,
		Email:      claims.User.Email,
		FullName:   claims.User.DisplayName,
		Role:       models.RoleStudent,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	serviceToken, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User authenticated", "user_id", user.ID)

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: serviceToken,
		TokenType:   "Bearer",
		User:        user,
	})
}

// Me returns the authenticated user's profile from the store.
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "User no longer exists",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
