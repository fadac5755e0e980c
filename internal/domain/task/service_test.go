package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/domain/events"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/realtime"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
)

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, status *Status) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Task
	for _, t := range r.tasks {
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }

type recordedEvent struct {
	task realtime.TaskEvent
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) TaskEvent(ctx context.Context, event realtime.TaskEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{task: event})
}

func (n *fakeNotifier) UserEvent(ctx context.Context, eventType events.Type, userID uuid.UUID, description string) {
}

func (n *fakeNotifier) recorded() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedEvent, len(n.events))
	copy(out, n.events)
	return out
}

func testUser(role user.Role) *user.User {
	return &user.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
}

func newTestService(users ...*user.User) (Service, *fakeTaskRepo, *fakeNotifier) {
	repo := newFakeTaskRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, newFakeUserRepo(users...), notifier, zap.NewNop())
	return svc, repo, notifier
}

func strPtr(s string) *string { return &s }

func TestCreateTask(t *testing.T) {
	actor := testUser(user.RoleUser)

	tests := []struct {
		name      string
		actorID   uuid.UUID
		input     CreateInput
		wantErr   error
		wantState Status
	}{
		{
			name:      "defaults to pending and self-assignment",
			actorID:   actor.ID,
			input:     CreateInput{Title: "Write report"},
			wantState: StatusPending,
		},
		{
			name:      "explicit status",
			actorID:   actor.ID,
			input:     CreateInput{Title: "Review PR", Status: strPtr("in_progress")},
			wantState: StatusInProgress,
		},
		{
			name:    "invalid status rejected",
			actorID: actor.ID,
			input:   CreateInput{Title: "Bad", Status: strPtr("done")},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "unknown actor",
			actorID: uuid.New(),
			input:   CreateInput{Title: "Orphan"},
			wantErr: user.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, notifier := newTestService(actor)

			created, err := svc.Create(context.Background(), tt.actorID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.tasks, "no task should persist on failure")
				assert.Empty(t, notifier.recorded(), "no event should fire on failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Title, created.Title)
			assert.Equal(t, tt.wantState, created.Status)
			assert.Equal(t, actor.ID, created.CreatedByID)
			assert.Equal(t, actor.ID, created.AssignedToID)

			events := notifier.recorded()
			require.Len(t, events, 1, "exactly one event per mutation")
			assert.Equal(t, realtime.ActionCreated, events[0].task.Action)
			assert.Equal(t, created.ID, events[0].task.TaskID)
			assert.Equal(t, actor.ID, events[0].task.UserID)
		})
	}
}

func TestCreateTaskAssignsToUnknownUser(t *testing.T) {
	actor := testUser(user.RoleUser)
	svc, _, notifier := newTestService(actor)

	missing := uuid.New()
	_, err := svc.Create(context.Background(), actor.ID, CreateInput{
		Title:      "Handoff",
		AssignedTo: &missing,
	})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.Empty(t, notifier.recorded())
}

func TestListTasks(t *testing.T) {
	actor := testUser(user.RoleUser)
	svc, _, _ := newTestService(actor)

	_, err := svc.Create(context.Background(), actor.ID, CreateInput{Title: "One"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), actor.ID, CreateInput{Title: "Two", Status: strPtr("completed")})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := svc.List(context.Background(), strPtr("completed"))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "Two", completed[0].Title)

	_, err = svc.List(context.Background(), strPtr("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateTask(t *testing.T) {
	creator := testUser(user.RoleUser)
	other := testUser(user.RoleUser)
	admin := testUser(user.RoleAdmin)

	tests := []struct {
		name    string
		actorID uuid.UUID
		input   UpdateInput
		wantErr error
	}{
		{
			name:    "creator can update",
			actorID: creator.ID,
			input:   UpdateInput{Status: strPtr("completed")},
		},
		{
			name:    "admin can update",
			actorID: admin.ID,
			input:   UpdateInput{Title: strPtr("Renamed")},
		},
		{
			name:    "other user forbidden",
			actorID: other.ID,
			input:   UpdateInput{Title: strPtr("Hijack")},
			wantErr: ErrForbidden,
		},
		{
			name:    "invalid status rejected before read",
			actorID: creator.ID,
			input:   UpdateInput{Status: strPtr("cancelled")},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, notifier := newTestService(creator, other, admin)
			created, err := svc.Create(context.Background(), creator.ID, CreateInput{Title: "Original"})
			require.NoError(t, err)

			updated, err := svc.Update(context.Background(), tt.actorID, created.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, notifier.recorded(), 1, "only the create event should exist")
				return
			}

			require.NoError(t, err)
			if tt.input.Title != nil {
				assert.Equal(t, *tt.input.Title, updated.Title)
			}
			if tt.input.Status != nil {
				assert.Equal(t, Status(*tt.input.Status), updated.Status)
			}

			events := notifier.recorded()
			require.Len(t, events, 2)
			assert.Equal(t, realtime.ActionUpdated, events[1].task.Action)
		})
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	actor := testUser(user.RoleUser)
	svc, _, _ := newTestService(actor)

	_, err := svc.Update(context.Background(), actor.ID, uuid.New(), UpdateInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	creator := testUser(user.RoleUser)
	other := testUser(user.RoleUser)
	svc, repo, notifier := newTestService(creator, other)

	created, err := svc.Create(context.Background(), creator.ID, CreateInput{Title: "Doomed"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), other.ID, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = repo.FindByID(context.Background(), created.ID)
	assert.NoError(t, err, "forbidden delete must not remove the task")

	err = svc.Delete(context.Background(), creator.ID, created.ID)
	require.NoError(t, err)
	_, err = repo.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	events := notifier.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, realtime.ActionDeleted, events[1].task.Action)
	assert.Equal(t, created.ID.String(), events[1].task.Metadata["taskId"])
}

func TestAssignTask(t *testing.T) {
	creator := testUser(user.RoleUser)
	assignee := testUser(user.RoleUser)
	admin := testUser(user.RoleAdmin)

	t.Run("admin can assign", func(t *testing.T) {
		svc, _, notifier := newTestService(creator, assignee, admin)
		created, err := svc.Create(context.Background(), creator.ID, CreateInput{Title: "Handoff"})
		require.NoError(t, err)

		assigned, err := svc.Assign(context.Background(), admin.ID, created.ID, assignee.ID)
		require.NoError(t, err)
		assert.Equal(t, assignee.ID, assigned.AssignedToID)
		assert.Equal(t, creator.ID, assigned.CreatedByID, "creator never changes")

		events := notifier.recorded()
		require.Len(t, events, 2)
		assert.Equal(t, realtime.ActionAssigned, events[1].task.Action)
		assert.Equal(t, assignee.ID.String(), events[1].task.Metadata["assigneeId"])
	})

	t.Run("non-admin forbidden even as creator", func(t *testing.T) {
		svc, _, _ := newTestService(creator, assignee, admin)
		created, err := svc.Create(context.Background(), creator.ID, CreateInput{Title: "Handoff"})
		require.NoError(t, err)

		_, err = svc.Assign(context.Background(), creator.ID, created.ID, assignee.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		svc, _, notifier := newTestService(creator, admin)
		created, err := svc.Create(context.Background(), creator.ID, CreateInput{Title: "Handoff"})
		require.NoError(t, err)

		_, err = svc.Assign(context.Background(), admin.ID, created.ID, uuid.New())
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		assert.Len(t, notifier.recorded(), 1)
	})
}

func TestConcurrentUpdatesSameTask(t *testing.T) {
	creator := testUser(user.RoleUser)
	svc, _, notifier := newTestService(creator)

	created, err := svc.Create(context.Background(), creator.ID, CreateInput{Title: "Contended"})
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Update(context.Background(), creator.ID, created.ID, UpdateInput{
				Status: strPtr("in_progress"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, final.Status)
	// create + one event per successful update
	assert.Len(t, notifier.recorded(), workers+1)
}

func TestTaskValidate(t *testing.T) {
	valid := Task{
		Title:       "ok",
		Status:      StatusPending,
		CreatedByID: uuid.New(),
		DueDate:     time.Now(),
	}
	assert.NoError(t, valid.Validate())

	noTitle := valid
	noTitle.Title = ""
	assert.ErrorIs(t, noTitle.Validate(), ErrInvalidInput)

	badStatus := valid
	badStatus.Status = "archived"
	assert.ErrorIs(t, badStatus.Validate(), ErrInvalidStatus)
}
