package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ria-board/src/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidPriority = errors.New("priority must be low, medium, or high")
	ErrTodoTextEmpty   = errors.New("todo text is required")
)

// AddTodoRequest represents input for creating a to-do
type AddTodoRequest struct {
	Text        string
	Description string
	Priority    domain.Priority
	DueDate     int64
	Category    string
	Tags        []string
}

// UpdateTodoRequest represents a partial-field update of a to-do
type UpdateTodoRequest struct {
	Text        *string
	Description *string
	Completed   *bool
	Priority    *domain.Priority
	DueDate     *int64
	Category    *string
	Tags        *[]string
}

// TodoStore caches to-do items with the same optimistic mutation pattern as
// the idea store.
type TodoStore struct {
	mu     sync.Mutex
	store  domain.Store
	logger *logrus.Logger
	todos  []domain.TodoItem
	loaded bool
}

// NewTodoStore creates a new to-do store
func NewTodoStore(store domain.Store, logger *logrus.Logger) *TodoStore {
	return &TodoStore{store: store, logger: logger}
}

// Load fetches all to-dos from the remote store.
func (s *TodoStore) Load(ctx context.Context) error {
	records, err := s.store.GetAll(ctx, domain.CollectionTodos)
	if err != nil {
		s.logger.WithError(err).Error("Todoの読み込みに失敗")
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	todos := make([]domain.TodoItem, 0, len(records))
	for _, rec := range records {
		var todo domain.TodoItem
		if err := json.Unmarshal(rec.Data, &todo); err != nil {
			s.logger.WithError(err).WithField("id", rec.ID).Warn("不正なTodoレコードをスキップ")
			continue
		}
		todo.ID = rec.ID
		todos = append(todos, todo)
	}

	s.mu.Lock()
	s.todos = todos
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Loaded reports whether the initial load has succeeded.
func (s *TodoStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Todos returns all cached to-dos sorted for display: incomplete first, then
// by priority, then newest first.
func (s *TodoStore) Todos() []domain.TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.TodoItem, len(s.todos))
	copy(out, s.todos)

	priorityRank := map[domain.Priority]int{
		domain.PriorityHigh:   0,
		domain.PriorityMedium: 1,
		domain.PriorityLow:    2,
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		if priorityRank[out[i].Priority] != priorityRank[out[j].Priority] {
			return priorityRank[out[i].Priority] < priorityRank[out[j].Priority]
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Add creates a to-do optimistically and persists it.
func (s *TodoStore) Add(ctx context.Context, req AddTodoRequest) (*domain.TodoItem, error) {
	if req.Text == "" {
		return nil, ErrTodoTextEmpty
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	now := time.Now().UnixMilli()
	todo := domain.TodoItem{
		ID:          uuid.NewString(),
		Text:        req.Text,
		Description: req.Description,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if todo.Tags == nil {
		todo.Tags = []string{}
	}

	data, err := json.Marshal(todo)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = applyOptimistic(ctx,
		func() { s.todos = append(s.todos, todo) },
		func(ctx context.Context) error {
			return s.store.Set(ctx, domain.CollectionTodos, todo.ID, data)
		},
		func() { s.removeLocked(todo.ID) },
	)
	if err != nil {
		s.logger.WithError(err).Error("Todoの保存に失敗")
		return nil, err
	}
	return &todo, nil
}

// Update merges fields into the cached to-do and persists the diff.
func (s *TodoStore) Update(ctx context.Context, id string, req UpdateTodoRequest) error {
	if req.Priority != nil && !req.Priority.IsValid() {
		return ErrInvalidPriority
	}

	fields := map[string]interface{}{"updatedAt": time.Now().UnixMilli()}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Completed != nil {
		fields["completed"] = *req.Completed
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		fields["dueDate"] = *req.DueDate
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}

	patch, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	snapshot := s.todos[idx]

	err = applyOptimistic(ctx,
		func() {
			t := &s.todos[idx]
			t.UpdatedAt = fields["updatedAt"].(int64)
			if req.Text != nil {
				t.Text = *req.Text
			}
			if req.Description != nil {
				t.Description = *req.Description
			}
			if req.Completed != nil {
				t.Completed = *req.Completed
			}
			if req.Priority != nil {
				t.Priority = *req.Priority
			}
			if req.DueDate != nil {
				t.DueDate = *req.DueDate
			}
			if req.Category != nil {
				t.Category = *req.Category
			}
			if req.Tags != nil {
				t.Tags = *req.Tags
			}
		},
		func(ctx context.Context) error {
			return s.store.Update(ctx, domain.CollectionTodos, id, patch)
		},
		func() {
			if i := s.indexLocked(id); i >= 0 {
				s.todos[i] = snapshot
			}
		},
	)
	if err != nil {
		s.logger.WithError(err).WithField("todo_id", id).Error("Todoの更新に失敗")
		return err
	}
	return nil
}

// Remove deletes the to-do optimistically.
func (s *TodoStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	removed := s.todos[idx]

	err := applyOptimistic(ctx,
		func() { s.removeLocked(id) },
		func(ctx context.Context) error {
			return s.store.Delete(ctx, domain.CollectionTodos, id)
		},
		func() { s.todos = append(s.todos, removed) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("todo_id", id).Error("Todoの削除に失敗")
		return err
	}
	return nil
}

// ToggleComplete flips the completed flag of the to-do.
func (s *TodoStore) ToggleComplete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	completed := !s.todos[idx].Completed
	s.mu.Unlock()

	return s.Update(ctx, id, UpdateTodoRequest{Completed: &completed})
}

func (s *TodoStore) indexLocked(id string) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TodoStore) removeLocked(id string) {
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return
		}
	}
}
