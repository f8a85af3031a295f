package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chepyr/go-task-list/internal/models"
)

// timeLayout is ISO-8601 with milliseconds; times are written in UTC so the zone prints as Z.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// record is the on-disk shape of a task.
type record struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	IsCompleted bool    `json:"isCompleted"`
	CreatedAt   string  `json:"createdAt"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad %s %q: %w", field, s, err)
	}
	return t.UTC(), nil
}

func toRecord(t models.Task) record {
	rec := record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   formatTime(t.CreatedAt),
	}
	if t.CompletedAt != nil {
		at := formatTime(*t.CompletedAt)
		rec.CompletedAt = &at
	}
	return rec
}

func (r record) toTask() (models.Task, error) {
	if r.ID == "" {
		return models.Task{}, errors.New("record without id")
	}
	createdAt, err := parseTime("createdAt", r.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	t := models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		CreatedAt:   createdAt,
	}
	if r.CompletedAt != nil {
		completedAt, err := parseTime("completedAt", *r.CompletedAt)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		t.CompletedAt = &completedAt
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// encodeTasks serializes the whole collection into the slot format.
func encodeTasks(tasks []models.Task) (string, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeTasks parses a slot blob. An empty blob is an empty collection.
func decodeTasks(blob string) ([]models.Task, error) {
	if strings.TrimSpace(blob) == "" {
		return []models.Task{}, nil
	}
	var records []record
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, fmt.Errorf("malformed task list: %w", err)
	}
	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		t, err := rec.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
