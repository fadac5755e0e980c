package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the event log to callers. Append is best-effort from the
// point of view of the surrounding mutation: a storage failure is returned to
// the notifier, which logs and continues.
type Service interface {
	Append(ctx context.Context, entry *EventLog) error
	FindAll(ctx context.Context) ([]EventLog, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Append(ctx context.Context, entry *EventLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return err
	}

	s.logger.Debug("event appended",
		zap.String("event_id", entry.ID.String()),
		zap.String("type", string(entry.Type)))

	return nil
}

func (s *service) FindAll(ctx context.Context) ([]EventLog, error) {
	return s.repo.FindAll(ctx)
}
