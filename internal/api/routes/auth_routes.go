package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ShakirYasin/exact-sol-test/internal/api/handlers"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// AuthRoutes handles the setup of auth-related routes
type AuthRoutes struct {
	handler     *handlers.AuthHandler
	jwtSecret   string
	blacklist   *auth.TokenBlacklist
	rateLimiter auth.RateLimiter
}

// NewAuthRoutes creates a new AuthRoutes instance
func NewAuthRoutes(handler *handlers.AuthHandler, jwtSecret string, blacklist *auth.TokenBlacklist, rateLimiter auth.RateLimiter) *AuthRoutes {
	return &AuthRoutes{
		handler:     handler,
		jwtSecret:   jwtSecret,
		blacklist:   blacklist,
		rateLimiter: rateLimiter,
	}
}

// RegisterRoutes registers all auth-related routes
func (ar *AuthRoutes) RegisterRoutes(router *gin.Engine) {
	authGroup := router.Group("/api/auth")
	{
		public := authGroup.Group("")
		public.Use(middleware.RateLimitMiddleware(ar.rateLimiter))
		{
			public.POST("/login", ar.handler.Login)
			public.POST("/register", ar.handler.Register)
		}

		protected := authGroup.Group("")
		protected.Use(middleware.NewAuthMiddleware(ar.jwtSecret, ar.blacklist))
		{
			protected.GET("/me", ar.handler.Me)
			protected.POST("/logout", ar.handler.Logout)
		}
	}
}
