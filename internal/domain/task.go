package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Priority ranks a task.
type Priority string

// Possible priority values
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Field limits for tasks.
const (
	MaxTitleLength    = 200
	MaxAssigneeLength = 100
	MaxCategoryLength = 50
)

// DateLayout is the calendar-date form accepted for deadlines.
const DateLayout = "2006-01-02"

// Task validation errors
var (
	ErrEmptyTaskID       = validationError("task ID cannot be empty")
	ErrEmptyTaskCreator  = validationError("task creator cannot be empty")
	ErrEmptyTitle        = validationError("title is required")
	ErrTitleTooLong      = validationError("title must be at most 200 characters long")
	ErrAssigneeTooLong   = validationError("assignee must be at most 100 characters long")
	ErrCategoryTooLong   = validationError("category must be at most 50 characters long")
	ErrInvalidTaskStatus = validationError("status must be one of Pending, In Progress, Completed")
	ErrInvalidPriority   = validationError("priority must be one of High, Medium, Low")
	ErrInvalidDeadline   = validationError("deadline must be an RFC 3339 timestamp or a YYYY-MM-DD date")
)

// ParseTaskStatus matches s case-insensitively against the known statuses
// and returns the canonical value.
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, status := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted} {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, nil
		}
	}
	return "", ErrInvalidTaskStatus
}

// IsValid reports whether s is one of the canonical statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ParsePriority matches s case-insensitively against the known priorities
// and returns the canonical value.
func ParsePriority(s string) (Priority, error) {
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", ErrInvalidPriority
}

// IsValid reports whether p is one of the canonical priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParseDeadline accepts an RFC 3339 timestamp or a YYYY-MM-DD date. An empty
// string yields a nil deadline.
func ParseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return &t, nil
	}
	return nil, ErrInvalidDeadline
}

// Task is a unit of work shared by every user of the tracker.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Assignee  string     `json:"assignee"`
	Deadline  *time.Time `json:"deadline"`
	Status    TaskStatus `json:"status"`
	Priority  Priority   `json:"priority"`
	Category  string     `json:"category"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTask creates a pending, medium-priority task owned by createdBy.
func NewTask(createdBy uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Status:    TaskStatusPending,
		Priority:  PriorityMedium,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.CreatedBy == uuid.Nil {
		return ErrEmptyTaskCreator
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(t.Assignee) > MaxAssigneeLength {
		return ErrAssigneeTooLong
	}
	if utf8.RuneCountInString(t.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// IsOwnedBy reports whether userID created the task.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.CreatedBy == userID
}

// TaskUpdate carries the fields a client supplied. Nil fields are left
// untouched. Deadline is the raw submitted value so that "" can clear it.
type TaskUpdate struct {
	Title    *string
	Assignee *string
	Deadline *string
	Priority *string
	Category *string
	Status   *string
}

// IsEmpty reports whether no field was supplied.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Assignee == nil && u.Deadline == nil &&
		u.Priority == nil && u.Category == nil && u.Status == nil
}

// TaskChanges summarises what Apply modified.
type TaskChanges struct {
	StatusChanged bool
	// FieldsChanged is true when anything other than the status changed.
	FieldsChanged bool
}

// Any reports whether Apply changed the task at all.
func (c TaskChanges) Any() bool {
	return c.StatusChanged || c.FieldsChanged
}

// Apply merges u into the task. The task is left untouched when any supplied
// value is invalid. UpdatedAt is bumped only if something changed.
func (t *Task) Apply(u TaskUpdate) (TaskChanges, error) {
	next := *t
	var changes TaskChanges

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title != next.Title {
			next.Title = title
			changes.FieldsChanged = true
		}
	}
	if u.Assignee != nil {
		assignee := strings.TrimSpace(*u.Assignee)
		if assignee != next.Assignee {
			next.Assignee = assignee
			changes.FieldsChanged = true
		}
	}
	if u.Category != nil {
		category := strings.TrimSpace(*u.Category)
		if category != next.Category {
			next.Category = category
			changes.FieldsChanged = true
		}
	}
	if u.Deadline != nil {
		deadline, err := ParseDeadline(*u.Deadline)
		if err != nil {
			return TaskChanges{}, err
		}
		if !sameDeadline(deadline, next.Deadline) {
			next.Deadline = deadline
			changes.FieldsChanged = true
		}
	}
	if u.Priority != nil {
		priority, err := ParsePriority(*u.Priority)
		if err != nil {
			return TaskChanges{}, err
		}
		if priority != next.Priority {
			next.Priority = priority
			changes.FieldsChanged = true
		}
	}
	if u.Status != nil {
		status, err := ParseTaskStatus(*u.Status)
		if err != nil {
			return TaskChanges{}, err
		}
		if status != next.Status {
			next.Status = status
			changes.StatusChanged = true
		}
	}

	if err := next.Validate(); err != nil {
		return TaskChanges{}, err
	}

	if changes.Any() {
		next.UpdatedAt = time.Now().UTC()
	}
	*t = next
	return changes, nil
}

func sameDeadline(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
