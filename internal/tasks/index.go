package tasks

import (
	"fmt"

	"github.com/chepyr/go-task-list/internal/models"
)

// index is the ordered, id-addressable form of the collection.
// Order is insertion order.
type index struct {
	tasks []models.Task
	pos   map[string]int
}

func newIndex(tasks []models.Task) (*index, error) {
	ix := &index{
		tasks: make([]models.Task, 0, len(tasks)),
		pos:   make(map[string]int, len(tasks)),
	}
	for _, t := range tasks {
		if _, dup := ix.pos[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %s", t.ID)
		}
		ix.add(t)
	}
	return ix, nil
}

func (ix *index) get(id string) (models.Task, bool) {
	i, ok := ix.pos[id]
	if !ok {
		return models.Task{}, false
	}
	return ix.tasks[i], true
}

func (ix *index) add(t models.Task) {
	ix.pos[t.ID] = len(ix.tasks)
	ix.tasks = append(ix.tasks, t)
}

func (ix *index) replace(t models.Task) {
	ix.tasks[ix.pos[t.ID]] = t
}

func (ix *index) remove(id string) bool {
	i, ok := ix.pos[id]
	if !ok {
		return false
	}
	ix.tasks = append(ix.tasks[:i], ix.tasks[i+1:]...)
	delete(ix.pos, id)
	for j := i; j < len(ix.tasks); j++ {
		ix.pos[ix.tasks[j].ID] = j
	}
	return true
}

// snapshot returns a copy that shares nothing with the index.
func (ix *index) snapshot() []models.Task {
	out := make([]models.Task, len(ix.tasks))
	for i, t := range ix.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func (ix *index) clone() *index {
	c := &index{
		tasks: ix.snapshot(),
		pos:   make(map[string]int, len(ix.pos)),
	}
	for id, i := range ix.pos {
		c.pos[id] = i
	}
	return c
}

func cloneTask(t models.Task) models.Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
