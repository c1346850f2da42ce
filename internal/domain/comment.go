package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCommentLength bounds comment text.
const MaxCommentLength = 500

// Comment validation errors
var (
	ErrEmptyCommentText   = validationError("comment text is required")
	ErrCommentTooLong     = validationError("comment must be at most 500 characters long")
	ErrEmptyCommentTaskID = validationError("comment task ID cannot be empty")
	ErrEmptyCommentAuthor = validationError("comment author cannot be empty")
)

// Comment is a short note left on a task.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a comment by username on the given task.
func NewComment(taskID uuid.UUID, username, text string) (*Comment, error) {
	c := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		Username:  username,
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.TaskID == uuid.Nil {
		return ErrEmptyCommentTaskID
	}
	if c.Username == "" {
		return ErrEmptyCommentAuthor
	}
	if c.Text == "" {
		return ErrEmptyCommentText
	}
	if utf8.RuneCountInString(c.Text) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
