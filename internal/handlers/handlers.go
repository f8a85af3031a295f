package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/chepyr/go-task-list/internal/models"
	"github.com/chepyr/go-task-list/internal/tasks"
)

// TaskStore is the part of tasks.Store the HTTP API uses.
type TaskStore interface {
	List(ctx context.Context) []models.Task
	Pending(ctx context.Context) []models.Task
	History(ctx context.Context) []models.Task
	Get(ctx context.Context, id string) (models.Task, error)
	Create(ctx context.Context, in models.NewTask) (models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	Complete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ThemeStore interface {
	Theme(ctx context.Context) models.Theme
	SetTheme(ctx context.Context, theme models.Theme) error
	ToggleTheme(ctx context.Context) (models.Theme, error)
}

type Handler struct {
	Tasks          TaskStore
	Settings       ThemeStore
	RateLimiter    *RateLimiter
	WSHub          *WSHub
	AllowedOrigins []string
}

const (
	maxBodyBytes   = 1 << 20 // 1MB
	requestTimeout = 5 * time.Second
)

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", h.HandleTasks)
	mux.HandleFunc("/tasks/", h.HandleTaskByID)
	mux.HandleFunc("/history", h.HandleHistory)
	mux.HandleFunc("/settings/theme", h.HandleTheme)
	mux.HandleFunc("/settings/theme/toggle", h.HandleThemeToggle)
	if h.WSHub != nil {
		mux.HandleFunc("/ws", h.HandleWebSocket)
	}
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// sendStoreError maps task store errors to status codes.
func sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		sendError(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, tasks.ErrInvalidTask):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Task storage error: %v", err)
		sendError(w, "Task storage unavailable", http.StatusInternalServerError)
	}
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), "application/json")
}

// decodeJSONBody enforces content type and size, and reports 400 on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// allow applies the per-IP rate limit and writes 429 when exceeded.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.RateLimiter == nil || h.RateLimiter.Allow(clientIP(r)) {
		return true
	}
	sendError(w, "Too many requests", http.StatusTooManyRequests)
	return false
}

func (h *Handler) broadcast(event, taskID string) {
	if h.WSHub != nil {
		h.WSHub.Broadcast(Event{Event: event, TaskID: taskID})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// originAllowed reports whether a WebSocket upgrade from r's Origin is accepted.
// An empty allow list accepts everything.
func originAllowed(allowed []string, r *http.Request) bool {
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
