package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

// AuthController serves login and user registration.
type AuthController struct {
	auth   *services.AuthService
	secret string
	expiry time.Duration
	log    *slog.Logger
}

func NewAuthController(auth *services.AuthService, secret string, expiry time.Duration, log *slog.Logger) *AuthController {
	return &AuthController{auth: auth, secret: secret, expiry: expiry, log: log}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, expiresAt, err := utils.GenerateToken(user, h.secret, h.expiry)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// Me returns the profile of the authenticated user.
func (h *AuthController) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), utils.ActorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register creates a staff or portal account. Admin only.
func (h *AuthController) Register(c *gin.Context) {
	var input services.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), utils.ActorFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
