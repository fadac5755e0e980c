package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ShakirYasin/exact-sol-test/internal/api/handlers"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// RealtimeRoutes handles the setup of the websocket endpoint
type RealtimeRoutes struct {
	handler   *handlers.RealtimeHandler
	jwtSecret string
	blacklist *auth.TokenBlacklist
}

// NewRealtimeRoutes creates a new RealtimeRoutes instance
func NewRealtimeRoutes(handler *handlers.RealtimeHandler, jwtSecret string, blacklist *auth.TokenBlacklist) *RealtimeRoutes {
	return &RealtimeRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

// RegisterRoutes registers the websocket route. Browsers cannot set headers
// on the upgrade request, so the auth middleware also accepts ?token=.
func (rr *RealtimeRoutes) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws", middleware.NewAuthMiddleware(rr.jwtSecret, rr.blacklist), rr.handler.Connect)
}
