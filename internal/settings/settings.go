// Package settings persists user preferences in their own storage slot.
package settings

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/chepyr/go-task-list/internal/models"
	"github.com/chepyr/go-task-list/internal/storage"
)

const DefaultKey = "@theme"

type Store struct {
	storage storage.Storage
	key     string
	mu      sync.Mutex
}

func NewStore(st storage.Storage, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{storage: st, key: key}
}

// Theme returns the saved theme. An unset or unreadable slot yields the
// default theme, like the task list never fails to render.
func (s *Store) Theme(ctx context.Context) models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme(ctx)
}

func (s *Store) theme(ctx context.Context) models.Theme {
	value, ok, err := s.storage.GetString(ctx, s.key)
	if err != nil {
		log.Printf("[settings] reading theme failed, using %s: %v", models.DefaultTheme, err)
		return models.DefaultTheme
	}
	if !ok || strings.TrimSpace(value) == "" {
		return models.DefaultTheme
	}
	theme, err := models.ParseTheme(value)
	if err != nil {
		log.Printf("[settings] ignoring stored theme: %v", err)
		return models.DefaultTheme
	}
	return theme
}

func (s *Store) SetTheme(ctx context.Context, theme models.Theme) error {
	if _, err := models.ParseTheme(string(theme)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTheme(ctx, theme)
}

func (s *Store) setTheme(ctx context.Context, theme models.Theme) error {
	if err := s.storage.SetString(ctx, s.key, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// ToggleTheme flips light/dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (models.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.theme(ctx).Toggle()
	if err := s.setTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
