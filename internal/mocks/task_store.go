package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/domain"
	"github.com/phrazzld/taskmaster/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation keeps copies of tasks in memory.
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn    func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	Tasks map[uuid.UUID]*domain.Task

	mu sync.Mutex
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty in-memory task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	stored := *task
	m.Tasks[task.ID] = &stored
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	found := *task
	return &found, nil
}

// List implements store.TaskStore.
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.Category != "" && task.Category != filter.Category {
			continue
		}
		if filter.Assignee != "" && task.Assignee != filter.Assignee {
			continue
		}
		if filter.CreatedBy != uuid.Nil && task.CreatedBy != filter.CreatedBy {
			continue
		}
		found := *task
		tasks = append(tasks, &found)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	stored := *task
	m.Tasks[task.ID] = &stored
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// WithTx returns the same mock.
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}
