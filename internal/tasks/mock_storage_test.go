package tasks

import (
	"context"
	"sync"
	"time"
)

type MockStorage struct {
	slots  map[string]string
	getErr error
	setErr error
	sets   int
	mutex  sync.Mutex
}

func NewMockStorage() *MockStorage {
	return &MockStorage{slots: make(map[string]string)}
}

func (m *MockStorage) GetString(ctx context.Context, key string) (string, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.slots[key]
	return value, ok, nil
}

func (m *MockStorage) SetString(ctx context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.setErr != nil {
		return m.setErr
	}
	m.slots[key] = value
	m.sets++
	return nil
}

func (m *MockStorage) raw(key string) (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	value, ok := m.slots[key]
	return value, ok
}

func (m *MockStorage) put(key, value string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.slots[key] = value
}

func (m *MockStorage) failWrites(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.setErr = err
}

func (m *MockStorage) failReads(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.getErr = err
}

func (m *MockStorage) writeCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.sets
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type recordingReporter struct {
	mu   sync.Mutex
	ops  []string
	errs []error
}

func (r *recordingReporter) Report(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}
