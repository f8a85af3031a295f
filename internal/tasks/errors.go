package tasks

import (
	"errors"

	"github.com/chepyr/go-task-list/internal/models"
)

// Sentinel errors for task store operations.
var (
	// ErrNotFound is returned by Update and Get when no task has the given id.
	ErrNotFound = errors.New("task not found")

	// ErrStorageRead is returned when the slot cannot be read or holds malformed content.
	ErrStorageRead = errors.New("task storage read failed")

	// ErrStorageWrite is returned when the slot cannot be written. Nothing was persisted.
	ErrStorageWrite = errors.New("task storage write failed")

	// ErrInvalidTask is returned when input or a merged record breaks a task invariant.
	ErrInvalidTask = models.ErrInvalidTask
)
