package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/chepyr/go-task-list/internal/models"
)

type themeResponse struct {
	Theme  models.Theme `json:"theme"`
	IsDark bool         `json:"isDark"`
}

func newThemeResponse(t models.Theme) themeResponse {
	return themeResponse{Theme: t, IsDark: t.IsDark()}
}

/*
routes:
- GET /settings/theme
- PUT /settings/theme
*/
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		sendJSON(w, http.StatusOK, newThemeResponse(h.Settings.Theme(ctx)))
	case http.MethodPut:
		if !h.allow(w, r) {
			return
		}
		var input struct {
			Theme string `json:"theme"`
		}
		if !decodeJSONBody(w, r, &input) {
			return
		}
		theme, err := models.ParseTheme(input.Theme)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.Settings.SetTheme(ctx, theme); err != nil {
			log.Printf("Failed to save theme: %v", err)
			sendError(w, "Failed to save theme", http.StatusInternalServerError)
			return
		}
		h.broadcast(EventThemeChanged, "")
		sendJSON(w, http.StatusOK, newThemeResponse(theme))
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /settings/theme/toggle
func (h *Handler) HandleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.allow(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	theme, err := h.Settings.ToggleTheme(ctx)
	if err != nil {
		log.Printf("Failed to toggle theme: %v", err)
		sendError(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}
	h.broadcast(EventThemeChanged, "")
	sendJSON(w, http.StatusOK, newThemeResponse(theme))
}
