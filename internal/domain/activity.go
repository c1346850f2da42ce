package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity actions recorded against a task.
const (
	ActionCreatedTask = "created task"
	ActionUpdatedTask = "updated task"
	ActionCommented   = "commented"
)

// Activity validation errors
var (
	ErrEmptyActivityTaskID = validationError("activity task ID cannot be empty")
	ErrEmptyActivityUser   = validationError("activity username cannot be empty")
	ErrEmptyActivityAction = validationError("activity action cannot be empty")
)

// ActionStatusChanged describes a status transition.
func ActionStatusChanged(status TaskStatus) string {
	return "changed status to " + string(status)
}

// ActionUploadedFile describes an attachment upload.
func ActionUploadedFile(originalName string) string {
	return "uploaded file " + originalName
}

// Activity is one line of a task's audit trail.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// NewActivity creates an activity entry for the given task.
func NewActivity(taskID uuid.UUID, username, action string) (*Activity, error) {
	a := &Activity{
		ID:        uuid.New(),
		TaskID:    taskID,
		Username:  username,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks if the Activity has valid data.
func (a *Activity) Validate() error {
	if a.TaskID == uuid.Nil {
		return ErrEmptyActivityTaskID
	}
	if a.Username == "" {
		return ErrEmptyActivityUser
	}
	if a.Action == "" {
		return ErrEmptyActivityAction
	}
	return nil
}
