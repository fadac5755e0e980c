package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/events"
	"github.com/ShakirYasin/exact-sol-test/pkg/logger"
)

// EventHandler exposes the audit event log to administrators
type EventHandler struct {
	service events.Service
	logger  *logger.Logger
}

// NewEventHandler creates a new EventHandler instance
func NewEventHandler(service events.Service, logger *logger.Logger) *EventHandler {
	return &EventHandler{service: service, logger: logger}
}

// ListEvents returns the event log, newest first
func (h *EventHandler) ListEvents(c *gin.Context) {
	entries, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	out := make([]dto.EventResponse, 0, len(entries))
	for i := range entries {
		out = append(out, EventToResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
