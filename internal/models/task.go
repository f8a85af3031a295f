package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidTask is returned when a task record breaks one of its invariants.
var ErrInvalidTask = errors.New("invalid task")

// Task is a single to-do item. CompletedAt is set if and only if IsCompleted is true.
type Task struct {
	ID          string
	Title       string
	Description string
	IsCompleted bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewTask holds the caller-supplied fields of a task being created.
type NewTask struct {
	Title       string
	Description string
}

// TaskPatch is a shallow overlay applied by an update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	IsCompleted *bool
	CompletedAt *time.Time
}

// Normalize trims the input the same way the create form does.
func (n NewTask) Normalize() NewTask {
	return NewTask{
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
	}
}

func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	return validText(n.Title, n.Description)
}

// validText rejects strings the slot's JSON encoding would rewrite.
func validText(title, description string) error {
	if !utf8.ValidString(title) {
		return fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidTask)
	}
	if !utf8.ValidString(description) {
		return fmt.Errorf("%w: description is not valid UTF-8", ErrInvalidTask)
	}
	return nil
}

// Validate checks the invariants every persisted task must satisfy.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTask)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if err := validText(t.Title, t.Description); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("%w: task %s has no creation time", ErrInvalidTask, t.ID)
	}
	if t.IsCompleted && t.CompletedAt == nil {
		return fmt.Errorf("%w: task %s is completed without a completion time", ErrInvalidTask, t.ID)
	}
	if !t.IsCompleted && t.CompletedAt != nil {
		return fmt.Errorf("%w: task %s has a completion time but is not completed", ErrInvalidTask, t.ID)
	}
	return nil
}

// Apply returns a copy of t with the patch overlaid. Un-completing a task drops
// its completion time; nothing else is stamped.
func (t Task) Apply(p TaskPatch) Task {
	out := t
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = strings.TrimSpace(*p.Description)
	}
	if p.IsCompleted != nil {
		out.IsCompleted = *p.IsCompleted
		if !out.IsCompleted {
			out.CompletedAt = nil
		}
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.IsCompleted == nil && p.CompletedAt == nil
}
