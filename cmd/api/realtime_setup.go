package main

import (
	"github.com/sirupsen/logrus"

	"github.com/ShakirYasin/exact-sol-test/internal/domain/events"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/realtime"
	"github.com/ShakirYasin/exact-sol-test/internal/infrastructure/persistence/postgres/connection"
	"github.com/ShakirYasin/exact-sol-test/pkg/logger"
)

// RealtimeSystem holds the hub, the notifier hooked into it, and the event
// log service feeding the audit trail.
type RealtimeSystem struct {
	Hub          *realtime.Hub
	Notifier     realtime.Notifier
	EventService events.Service
	Logger       *logrus.Logger
}

// SetupRealtimeSystem builds the realtime stack. The hub is owned by this
// struct and must be shut down through it; nothing else closes it.
func SetupRealtimeSystem(db *connection.Database, appLogger *logger.Logger, isDevelopment bool) *RealtimeSystem {
	rtLogger := logrus.New()
	rtLogger.SetFormatter(&logrus.JSONFormatter{})
	if isDevelopment {
		rtLogger.SetLevel(logrus.DebugLevel)
	} else {
		rtLogger.SetLevel(logrus.InfoLevel)
	}

	eventRepo := events.NewRepository(db)
	eventService := events.NewService(eventRepo, appLogger.Logger)

	hub := realtime.NewHub(64, rtLogger)
	notifier := realtime.NewNotifier(eventService, hub, rtLogger)

	return &RealtimeSystem{
		Hub:          hub,
		Notifier:     notifier,
		EventService: eventService,
		Logger:       rtLogger,
	}
}

// Shutdown disconnects every websocket client and stops the hub
func (rs *RealtimeSystem) Shutdown() {
	rs.Hub.Close()
}
