package events

import (
	"context"

	"github.com/ShakirYasin/exact-sol-test/internal/infrastructure/persistence/postgres/connection"
)

// Repository defines the interface for event log persistence. There is no
// update or delete: the log only grows.
type Repository interface {
	Append(ctx context.Context, entry *EventLog) error
	FindAll(ctx context.Context) ([]EventLog, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, entry *EventLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindAll(ctx context.Context) ([]EventLog, error) {
	var entries []EventLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
