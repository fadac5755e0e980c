package task

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/domain/realtime"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
)

var (
	// ErrInvalidInput is returned when task data fails validation
	ErrInvalidInput = errors.New("invalid task input")
	// ErrInvalidStatus is returned when a status value is not one of the known states
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrForbidden is returned when the actor lacks permission for the operation
	ErrForbidden = errors.New("operation not permitted")
)

// CreateInput carries the fields accepted when creating a task
type CreateInput struct {
	Title       string
	Description string
	Status      *string
	DueDate     time.Time
	AssignedTo  *uuid.UUID
}

// UpdateInput carries the fields accepted when updating a task. Nil fields
// are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

// Service defines the task lifecycle operations
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreateInput) (*Task, error)
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, status *string) ([]Task, error)
	Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateInput) (*Task, error)
	Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
	Assign(ctx context.Context, actorID uuid.UUID, id uuid.UUID, assigneeID uuid.UUID) (*Task, error)
}

const lockStripes = 64

type service struct {
	repo     Repository
	users    user.Repository
	notifier realtime.Notifier
	log      *zap.Logger

	// Striped locks serialize read-modify-write sequences per task id so two
	// concurrent updates of the same task cannot interleave between read and
	// save. Updates to distinct tasks proceed in parallel.
	locks [lockStripes]sync.Mutex
}

// NewService creates a new task service
func NewService(repo Repository, users user.Repository, notifier realtime.Notifier, log *zap.Logger) Service {
	return &service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

func (s *service) lockFor(id uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(id[:])
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, input CreateInput) (*Task, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	status := StatusPending
	if input.Status != nil {
		status = Status(*input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	assignee := actor.ID
	if input.AssignedTo != nil {
		if _, err := s.users.FindByID(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
		assignee = *input.AssignedTo
	}

	t := &Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       status,
		DueDate:      input.DueDate,
		AssignedToID: assignee,
		CreatedByID:  actor.ID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info("task created",
		zap.String("task_id", t.ID.String()),
		zap.String("user_id", actor.ID.String()))

	s.notifier.TaskEvent(ctx, realtime.TaskEvent{
		TaskID:   t.ID,
		UserID:   actor.ID,
		Action:   realtime.ActionCreated,
		Metadata: map[string]interface{}{"task": t},
	})
	return s.repo.FindByID(ctx, t.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, status *string) ([]Task, error) {
	var filter *Status
	if status != nil && *status != "" {
		st := Status(*status)
		if !st.IsValid() {
			return nil, ErrInvalidStatus
		}
		filter = &st
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateInput) (*Task, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !Status(*input.Status).IsValid() {
		return nil, ErrInvalidStatus
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(actor, t); err != nil {
		return nil, err
	}

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Status != nil {
		t.Status = Status(*input.Status)
	}
	if input.DueDate != nil {
		t.DueDate = *input.DueDate
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info("task updated",
		zap.String("task_id", t.ID.String()),
		zap.String("user_id", actor.ID.String()))

	s.notifier.TaskEvent(ctx, realtime.TaskEvent{
		TaskID:   t.ID,
		UserID:   actor.ID,
		Action:   realtime.ActionUpdated,
		Metadata: map[string]interface{}{"task": t},
	})
	return t, nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(actor, t); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("task deleted",
		zap.String("task_id", id.String()),
		zap.String("user_id", actor.ID.String()))

	s.notifier.TaskEvent(ctx, realtime.TaskEvent{
		TaskID:   id,
		UserID:   actor.ID,
		Action:   realtime.ActionDeleted,
		Metadata: map[string]interface{}{"taskId": id.String()},
	})
	return nil
}

func (s *service) Assign(ctx context.Context, actorID uuid.UUID, id uuid.UUID, assigneeID uuid.UUID) (*Task, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, assigneeID); err != nil {
		return nil, err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t.AssignedToID = assigneeID
	t.AssignedTo = nil
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	t, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("task assigned",
		zap.String("task_id", t.ID.String()),
		zap.String("assignee_id", assigneeID.String()),
		zap.String("user_id", actor.ID.String()))

	s.notifier.TaskEvent(ctx, realtime.TaskEvent{
		TaskID: t.ID,
		UserID: actor.ID,
		Action: realtime.ActionAssigned,
		Metadata: map[string]interface{}{
			"task":       t,
			"assigneeId": assigneeID.String(),
		},
	})
	return t, nil
}

// authorizeMutation enforces the ownership rule for update and delete: the
// actor must be the task's creator or an admin.
func (s *service) authorizeMutation(actor *user.User, t *Task) error {
	if actor.Role == user.RoleAdmin {
		return nil
	}
	if t.CreatedByID == actor.ID {
		return nil
	}
	return ErrForbidden
}
