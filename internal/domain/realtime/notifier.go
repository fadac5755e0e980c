package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ShakirYasin/exact-sol-test/internal/domain/events"
)

// Action is the broadcast-facing name of a task mutation.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionAssigned Action = "assigned"
)

// eventType maps a broadcast action to its audit log type.
func (a Action) eventType() events.Type {
	return events.Type("task_" + string(a))
}

// TaskEvent describes a committed task mutation. Metadata carries the
// snapshot clients and auditors see: the task for create/update/assign, the
// bare id for delete.
type TaskEvent struct {
	TaskID   uuid.UUID              `json:"taskId"`
	UserID   uuid.UUID              `json:"userId"`
	Action   Action                 `json:"action"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Notifier is the post-commit hook invoked after a task mutation has been
// persisted. It appends one event log entry and pushes one notification to
// the shared task room. Both steps are fault isolated: a failure is logged
// and never propagated to, or rolls back, the committed write.
type Notifier interface {
	TaskEvent(ctx context.Context, event TaskEvent)
	UserEvent(ctx context.Context, eventType events.Type, userID uuid.UUID, description string)
}

type notifier struct {
	events events.Service
	hub    *Hub
	log    *logrus.Logger
}

func NewNotifier(eventService events.Service, hub *Hub, log *logrus.Logger) Notifier {
	return &notifier{events: eventService, hub: hub, log: log}
}

func (n *notifier) TaskEvent(ctx context.Context, event TaskEvent) {
	entry := &events.EventLog{
		Type:        event.Action.eventType(),
		UserID:      event.UserID,
		Metadata:    event.Metadata,
		Description: fmt.Sprintf("Task %s was %s", event.TaskID, event.Action),
	}
	if err := n.events.Append(ctx, entry); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"task_id": event.TaskID,
			"action":  event.Action,
		}).Error("failed to append task event")
	}

	n.hub.Broadcast(TaskRoom, Message{
		Type: string(event.Action),
		Data: event,
	})
}

func (n *notifier) UserEvent(ctx context.Context, eventType events.Type, userID uuid.UUID, description string) {
	entry := &events.EventLog{
		Type:        eventType,
		UserID:      userID,
		Metadata:    map[string]interface{}{"userId": userID.String()},
		Description: description,
	}
	if err := n.events.Append(ctx, entry); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    eventType,
		}).Error("failed to append user event")
	}
}
