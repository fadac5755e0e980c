package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ShakirYasin/exact-sol-test/internal/api/handlers"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// EventRoutes handles the setup of audit log routes
type EventRoutes struct {
	handler   *handlers.EventHandler
	jwtSecret string
	blacklist *auth.TokenBlacklist
}

// NewEventRoutes creates a new EventRoutes instance
func NewEventRoutes(handler *handlers.EventHandler, jwtSecret string, blacklist *auth.TokenBlacklist) *EventRoutes {
	return &EventRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

// RegisterRoutes registers the event log routes. The log is admin only.
func (er *EventRoutes) RegisterRoutes(router *gin.Engine) {
	events := router.Group("/api/events")
	events.Use(middleware.NewAuthMiddleware(er.jwtSecret, er.blacklist), middleware.RequireAdmin())
	{
		// The audit log is append only and unbounded, compress it
		events.GET("", gzip.Gzip(gzip.DefaultCompression), er.handler.ListEvents)
	}
}
