package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func decodeTheme(t *testing.T, body []byte) themeResponse {
	t.Helper()
	var resp themeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode theme: %v (%s)", err, body)
	}
	return resp
}

func TestTheme(t *testing.T) {
	_, mux, _ := setupHTTP(t)

	rr := doJSON(t, mux, http.MethodGet, "/settings/theme", "")
	if got := decodeTheme(t, rr.Body.Bytes()); got.Theme != "light" || got.IsDark {
		t.Fatalf("default theme = %+v", got)
	}

	rr = doJSON(t, mux, http.MethodPut, "/settings/theme", `{"theme":"Dark"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT: %d %s", rr.Code, rr.Body.String())
	}
	if got := decodeTheme(t, rr.Body.Bytes()); got.Theme != "dark" || !got.IsDark {
		t.Errorf("PUT response = %+v", got)
	}

	rr = doJSON(t, mux, http.MethodPost, "/settings/theme/toggle", "")
	if got := decodeTheme(t, rr.Body.Bytes()); got.Theme != "light" {
		t.Errorf("toggle = %+v", got)
	}
	rr = doJSON(t, mux, http.MethodGet, "/settings/theme", "")
	if got := decodeTheme(t, rr.Body.Bytes()); got.Theme != "light" {
		t.Errorf("theme after toggle = %+v", got)
	}
}

func TestTheme_Errors(t *testing.T) {
	_, mux, st := setupHTTP(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown theme", http.MethodPut, "/settings/theme", `{"theme":"sepia"}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/settings/theme", `{`, http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "/settings/theme", "", http.StatusMethodNotAllowed},
		{"toggle with GET", http.MethodGet, "/settings/theme/toggle", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := doJSON(t, mux, tt.method, tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rr.Code, tt.want)
			}
		})
	}

	st.fail(nil, errors.New("disk full"))
	if rr := doJSON(t, mux, http.MethodPost, "/settings/theme/toggle", ""); rr.Code != http.StatusInternalServerError {
		t.Errorf("toggle on write failure = %d", rr.Code)
	}
	if rr := doJSON(t, mux, http.MethodPut, "/settings/theme", `{"theme":"dark"}`); rr.Code != http.StatusInternalServerError {
		t.Errorf("PUT on write failure = %d", rr.Code)
	}
}
