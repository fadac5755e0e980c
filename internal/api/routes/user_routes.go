package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ShakirYasin/exact-sol-test/internal/api/handlers"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// UserRoutes handles the setup of user management routes
type UserRoutes struct {
	handler   *handlers.UserHandler
	jwtSecret string
	blacklist *auth.TokenBlacklist
}

// NewUserRoutes creates a new UserRoutes instance
func NewUserRoutes(handler *handlers.UserHandler, jwtSecret string, blacklist *auth.TokenBlacklist) *UserRoutes {
	return &UserRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

// RegisterRoutes registers all user-related routes
func (ur *UserRoutes) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/api/users")
	users.Use(middleware.NewAuthMiddleware(ur.jwtSecret, ur.blacklist))
	{
		users.GET("", ur.handler.ListUsers)
		users.PATCH("/profile", ur.handler.UpdateProfile)
		users.POST("/admin", middleware.RequireAdmin(), ur.handler.CreateAdmin)
	}
}
