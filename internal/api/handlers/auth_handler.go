package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/events"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/realtime"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
	"github.com/ShakirYasin/exact-sol-test/pkg/logger"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	users     user.Service
	jwt       *auth.JWTService
	blacklist *auth.TokenBlacklist
	notifier  realtime.Notifier
	logger    *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users user.Service, jwt *auth.JWTService, blacklist *auth.TokenBlacklist, notifier realtime.Notifier, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
		notifier:  notifier,
		logger:    logger,
	}
}

// Login authenticates a user and returns a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		h.logger.Error("Token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.notifier.UserEvent(c.Request.Context(), events.UserLoggedIn, u.ID, "User logged in")

	c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: token, User: UserToResponse(u)})
}

// Register creates a new account and logs it in. Duplicate emails and
// missing passwords answer 401, matching the behavior clients already
// depend on.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Register(c.Request.Context(), user.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) || errors.Is(err, user.ErrPasswordRequired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		h.logger.Error("Token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, dto.LoginResponse{AccessToken: token, User: UserToResponse(u)})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	u, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": UserToResponse(u)})
}

// Logout invalidates the current token until its natural expiry
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	token, _ := middleware.GetToken(c)
	if claims, ok := middleware.GetClaims(c); ok && claims.ExpiresAt != nil {
		h.blacklist.Add(token, claims.ExpiresAt.Time)
	}

	h.notifier.UserEvent(c.Request.Context(), events.UserLoggedOut, userID, "User logged out")

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
