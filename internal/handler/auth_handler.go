package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/supplyconnect/internal/middleware"
	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/service"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// AuthHandler serves signup, login and the current session.
type AuthHandler struct {
	authService *service.AuthService
	limiter     *middleware.FailedLoginLimiter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, limiter *middleware.FailedLoginLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// Signup handles POST /v1/auth/:role/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	role := models.Role(c.Param("role"))
	if !role.Valid() {
		handleError(c, utils.ErrInvalidRole)
		return
	}

	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), role, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Account created", res)
}

// Login handles POST /v1/auth/:role/login
func (h *AuthHandler) Login(c *gin.Context) {
	role := models.Role(c.Param("role"))
	if !role.Valid() {
		handleError(c, utils.ErrInvalidRole)
		return
	}

	ip := c.ClientIP()
	if h.limiter.Blocked(ip) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many failed login attempts, try again in a minute")
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.authService.Login(c.Request.Context(), role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			h.limiter.Fail(ip)
		}
		handleError(c, err)
		return
	}
	h.limiter.Reset(ip)
	utils.Success(c, 200, "Login successful", res)
}

// Me handles GET /v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.GetSession(c)
	account, err := h.authService.Profile(c.Request.Context(), session)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Session retrieved", gin.H{
		"session": session,
		"account": account,
	})
}
