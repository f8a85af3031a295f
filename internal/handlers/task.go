package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/chepyr/go-task-list/internal/models"
)

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toResponse(t models.Task) taskResponse {
	return taskResponse(t)
}

func toResponses(list []models.Task) []taskResponse {
	out := make([]taskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toResponse(t))
	}
	return out
}

/*
handles routes:
- GET /tasks?status={pending|completed} - list tasks
- POST /tasks - create a new task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var list []models.Task
	switch strings.ToLower(r.URL.Query().Get("status")) {
	case "", "all":
		list = h.Tasks.List(ctx)
	case "pending":
		list = h.Tasks.Pending(ctx)
	case "completed":
		list = h.Tasks.History(ctx)
	default:
		sendError(w, "status must be pending, completed or all", http.StatusBadRequest)
		return
	}
	sendJSON(w, http.StatusOK, toResponses(list))
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !decodeJSONBody(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Tasks.Create(ctx, models.NewTask{Title: input.Title, Description: input.Description})
	if err != nil {
		sendStoreError(w, err)
		return
	}
	h.broadcast(EventTaskCreated, task.ID)
	w.Header().Set("Location", "/tasks/"+task.ID)
	sendJSON(w, http.StatusCreated, toResponse(task))
}

/*
routes:
- GET /tasks/{id}
- PUT/PATCH /tasks/{id}
- DELETE /tasks/{id}
- POST /tasks/{id}/complete
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(r.URL.Path[len("/tasks/"):], "/")
	taskID, action, _ := strings.Cut(rest, "/")
	if taskID == "" {
		sendError(w, "task id is required", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
	case "complete":
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.completeTask(w, r, taskID)
		return
	default:
		sendError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTask(w, r, taskID)
	case http.MethodPut, http.MethodPatch:
		h.updateTask(w, r, taskID)
	case http.MethodDelete:
		h.deleteTask(w, r, taskID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Tasks.Get(ctx, taskID)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, toResponse(task))
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if !h.allow(w, r) {
		return
	}
	var input struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		IsCompleted *bool      `json:"isCompleted"`
		CompletedAt *time.Time `json:"completedAt"`
	}
	if !decodeJSONBody(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Tasks.Update(ctx, taskID, models.TaskPatch{
		Title:       input.Title,
		Description: input.Description,
		IsCompleted: input.IsCompleted,
		CompletedAt: input.CompletedAt,
	})
	if err != nil {
		sendStoreError(w, err)
		return
	}
	h.broadcast(EventTaskUpdated, task.ID)
	sendJSON(w, http.StatusOK, toResponse(task))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if !h.allow(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Tasks.Delete(ctx, taskID); err != nil {
		sendStoreError(w, err)
		return
	}
	h.broadcast(EventTaskDeleted, taskID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if !h.allow(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Tasks.Complete(ctx, taskID); err != nil {
		sendStoreError(w, err)
		return
	}
	h.broadcast(EventTaskCompleted, taskID)
	w.WriteHeader(http.StatusNoContent)
}

// GET /history - completed tasks, most recently completed first
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	sendJSON(w, http.StatusOK, toResponses(h.Tasks.History(ctx)))
}
