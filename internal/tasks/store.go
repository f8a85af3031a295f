// Package tasks owns the persisted task collection: one JSON array kept in a
// single storage slot and rewritten in full on every mutation.
package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/chepyr/go-task-list/internal/models"
	"github.com/chepyr/go-task-list/internal/storage"
	"github.com/google/uuid"
)

// DefaultKey is the slot the collection lives in.
const DefaultKey = "@tasks"

// Reporter receives failures that an operation absorbs instead of returning.
type Reporter interface {
	Report(op string, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(op string, err error)

func (f ReporterFunc) Report(op string, err error) { f(op, err) }

// LogReporter writes absorbed failures to the standard logger.
type LogReporter struct{}

func (LogReporter) Report(op string, err error) {
	log.Printf("[tasks] %s failed, showing no tasks: %v", op, err)
}

// Store is the only component that reads or writes the task slot.
//
// Every operation re-reads the slot, so writes made by other handles of the
// same slot are picked up. Operations on one Store are serialized; two Stores
// sharing a slot remain last-writer-wins.
type Store struct {
	storage  storage.Storage
	key      string
	now      func() time.Time
	newID    func() string
	reporter Reporter

	mu sync.Mutex
	// last index flushed or loaded, with the blob it was decoded from
	cached     *index
	cachedBlob string
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithReporter(r Reporter) Option {
	return func(s *Store) { s.reporter = r }
}

func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  st,
		key:      DefaultKey,
		now:      time.Now,
		newID:    uuid.NewString,
		reporter: LogReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp truncates to the precision the slot keeps, so a returned task
// compares equal to the same task read back later.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) load(ctx context.Context) (*index, error) {
	blob, ok, err := s.storage.GetString(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if !ok {
		blob = ""
	}
	if s.cached != nil && blob == s.cachedBlob {
		return s.cached.clone(), nil
	}

	decoded, err := decodeTasks(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	ix, err := newIndex(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	s.cached, s.cachedBlob = ix, blob
	return ix.clone(), nil
}

// flush writes ix and returns the collection as decoded from the written blob,
// which is what every later reader of the slot will see.
func (s *Store) flush(ctx context.Context, ix *index) (*index, error) {
	blob, err := encodeTasks(ix.tasks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if err := s.storage.SetString(ctx, s.key, blob); err != nil {
		s.cached, s.cachedBlob = nil, ""
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	decoded, err := decodeTasks(blob)
	if err == nil {
		var written *index
		if written, err = newIndex(decoded); err == nil {
			s.cached, s.cachedBlob = written, blob
			return written.clone(), nil
		}
	}
	s.cached, s.cachedBlob = nil, ""
	return nil, fmt.Errorf("%w: written slot does not decode: %w", ErrStorageRead, err)
}

// Load returns every task in insertion order, or the read error.
func (s *Store) Load(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ix.snapshot(), nil
}

// emptyOnReadFailure is the listing policy: a slot that cannot be read is
// reported and shown as an empty list, never as an error.
func (s *Store) emptyOnReadFailure(op string, tasks []models.Task, err error) []models.Task {
	if err != nil {
		s.reporter.Report(op, err)
		return []models.Task{}
	}
	return tasks
}

// List returns every task in insertion order. It never fails; see emptyOnReadFailure.
func (s *Store) List(ctx context.Context) []models.Task {
	all, err := s.Load(ctx)
	return s.emptyOnReadFailure("list", all, err)
}

// Pending returns the tasks not yet completed, in insertion order.
func (s *Store) Pending(ctx context.Context) []models.Task {
	all, err := s.Load(ctx)
	if err != nil {
		return s.emptyOnReadFailure("pending", nil, err)
	}
	return slices.DeleteFunc(all, func(t models.Task) bool { return t.IsCompleted })
}

// History returns completed tasks, most recently completed first.
func (s *Store) History(ctx context.Context) []models.Task {
	all, err := s.Load(ctx)
	if err != nil {
		return s.emptyOnReadFailure("history", nil, err)
	}
	done := slices.DeleteFunc(all, func(t models.Task) bool { return !t.IsCompleted })
	slices.SortStableFunc(done, func(a, b models.Task) int {
		return cmp.Compare(b.CompletedAt.UnixNano(), a.CompletedAt.UnixNano())
	})
	return done
}

func (s *Store) Get(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.load(ctx)
	if err != nil {
		return models.Task{}, err
	}
	t, ok := ix.get(id)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// Create appends a new pending task and persists the whole list. If the write
// fails the task does not exist.
func (s *Store) Create(ctx context.Context, in models.NewTask) (models.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		IsCompleted: false,
		CreatedAt:   s.timestamp(),
	}
	if _, exists := ix.get(task.ID); exists {
		return models.Task{}, fmt.Errorf("%w: id %s already in use", ErrInvalidTask, task.ID)
	}
	ix.add(task)

	written, err := s.flush(ctx, ix)
	if err != nil {
		return models.Task{}, err
	}
	saved, _ := written.get(task.ID)
	return saved, nil
}

// Update overlays patch on the task with the given id. Unknown ids fail with
// ErrNotFound and leave the slot untouched. No timestamps are stamped here.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.load(ctx)
	if err != nil {
		return models.Task{}, err
	}
	existing, ok := ix.get(id)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.update(ctx, ix, existing, patch)
}

func (s *Store) update(ctx context.Context, ix *index, existing models.Task, patch models.TaskPatch) (models.Task, error) {
	updated := existing.Apply(patch)
	if updated.CompletedAt != nil {
		// same precision as the slot keeps
		at := updated.CompletedAt.UTC().Truncate(time.Millisecond)
		updated.CompletedAt = &at
	}
	if err := updated.Validate(); err != nil {
		return models.Task{}, err
	}
	ix.replace(updated)
	written, err := s.flush(ctx, ix)
	if err != nil {
		return models.Task{}, err
	}
	saved, _ := written.get(updated.ID)
	return saved, nil
}

// Complete marks the task done now. Unknown ids are ignored, and completing
// an already completed task moves its completion time to now.
func (s *Store) Complete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.load(ctx)
	if err != nil {
		return err
	}
	existing, ok := ix.get(id)
	if !ok {
		return nil
	}

	done := true
	at := s.timestamp()
	_, err = s.update(ctx, ix, existing, models.TaskPatch{IsCompleted: &done, CompletedAt: &at})
	return err
}

// Delete removes the task if present. Deleting a missing id still succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.load(ctx)
	if err != nil {
		return err
	}
	ix.remove(id)
	_, err = s.flush(ctx, ix)
	return err
}

// Count reports how many tasks are pending and completed.
func (s *Store) Count(ctx context.Context) (pending, completed int, err error) {
	all, err := s.Load(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, t := range all {
		if t.IsCompleted {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed, nil
}
