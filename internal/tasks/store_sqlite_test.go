package tasks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chepyr/go-task-list/internal/db"
	"github.com/chepyr/go-task-list/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

func TestStore_SQLiteSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	dbx, err := db.Connect("sqlite3", path)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer dbx.Close()

	repo := db.NewSlotRepository(dbx)
	ctx := context.Background()
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	store := NewStore(repo)
	task, err := store.Create(ctx, models.NewTask{Title: "Buy milk", Description: "2 liters"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Complete(ctx, task.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// reopen: the collection survives the process
	dbx2, err := db.Connect("sqlite3", path)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer dbx2.Close()

	list := NewStore(db.NewSlotRepository(dbx2)).List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	got := list[0]
	if got.ID != task.ID || got.Title != "Buy milk" || !got.IsCompleted || got.CompletedAt == nil {
		t.Errorf("unexpected task after reopen: %+v", got)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("createdAt %v, want %v", got.CreatedAt, task.CreatedAt)
	}
}
