package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/chepyr/go-task-list/internal/config"
	"github.com/chepyr/go-task-list/internal/models"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		StorageDriver:   driver,
		StorageDir:      filepath.Join(dir, "slots"),
		SQLitePath:      filepath.Join(dir, "tasklist.db"),
		TasksKey:        "@tasks",
		ThemeKey:        "@theme",
		ServerPort:      "0",
		RateLimit:       100,
		RateWindow:      time.Minute,
		ShutdownTimeout: time.Second,
	}
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	load := func() (*config.Config, error) {
		c := *cfg
		return &c, nil
	}
	var out bytes.Buffer
	cmd := newRootCmd(load)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var addedID = regexp.MustCompile(`Added (\S+)`)

func mustAdd(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := runCLI(t, cfg, append([]string{"add"}, args...)...)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	m := addedID.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("unexpected add output %q", out)
	}
	return m[1]
}

func TestCLI_Workflow(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverFile} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)

			out, err := runCLI(t, cfg, "list")
			if err != nil || !strings.Contains(out, "No tasks.") {
				t.Fatalf("empty list = %q, %v", out, err)
			}

			milk := mustAdd(t, cfg, "Buy milk", "-d", "2 liters")
			dog := mustAdd(t, cfg, "Walk dog")

			out, _ = runCLI(t, cfg, "list")
			if !strings.Contains(out, "[ ] "+milk+"  Buy milk") || !strings.Contains(out, "2 liters") {
				t.Errorf("list output missing task: %q", out)
			}
			if !strings.Contains(out, "2 pending, 0 completed") {
				t.Errorf("list counts wrong: %q", out)
			}

			if _, err := runCLI(t, cfg, "complete", milk); err != nil {
				t.Fatalf("complete: %v", err)
			}
			out, _ = runCLI(t, cfg, "list")
			if strings.Contains(out, milk) || !strings.Contains(out, dog) {
				t.Errorf("pending list should hide completed tasks: %q", out)
			}
			out, _ = runCLI(t, cfg, "list", "--completed")
			if !strings.Contains(out, "[x] "+milk) || strings.Contains(out, dog) {
				t.Errorf("completed list = %q", out)
			}
			out, _ = runCLI(t, cfg, "history")
			if !strings.Contains(out, "[x] "+milk) {
				t.Errorf("history = %q", out)
			}

			out, err = runCLI(t, cfg, "edit", dog, "--title", "Walk the dog")
			if err != nil || !strings.Contains(out, "Walk the dog") {
				t.Fatalf("edit = %q, %v", out, err)
			}

			if _, err := runCLI(t, cfg, "delete", milk); err != nil {
				t.Fatalf("delete: %v", err)
			}
			out, _ = runCLI(t, cfg, "list", "--all")
			if strings.Contains(out, milk) || !strings.Contains(out, "1 pending, 0 completed") {
				t.Errorf("after delete = %q", out)
			}
		})
	}
}

func TestCLI_Errors(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"blank title", []string{"add", "   "}, "invalid task"},
		{"edit missing", []string{"edit", "nope", "--title", "x"}, "task not found"},
		{"edit nothing", []string{"edit", "nope"}, "nothing to change"},
		{"conflicting flags", []string{"list", "--all", "--completed"}, "cannot be used together"},
		{"unknown theme", []string{"theme", "sepia"}, "unknown theme"},
		{"missing arg", []string{"complete"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, cfg, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}

	// missing ids are fine for complete and delete
	for _, args := range [][]string{{"complete", "nope"}, {"delete", "nope"}} {
		if _, err := runCLI(t, cfg, args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
}

func TestCLI_Theme(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"theme"}, "light"},
		{[]string{"theme", "dark"}, "dark"},
		{[]string{"theme"}, "dark"},
		{[]string{"theme", "toggle"}, "light"},
		{[]string{"theme"}, "light"},
	}
	for _, s := range steps {
		out, err := runCLI(t, cfg, s.args...)
		if err != nil {
			t.Fatalf("%v: %v", s.args, err)
		}
		if strings.TrimSpace(out) != s.want {
			t.Errorf("%v = %q, want %q", s.args, out, s.want)
		}
	}
}

func TestCLI_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "mongo")
	if _, err := runCLI(t, cfg, "list"); err == nil || !strings.Contains(err.Error(), "unknown STORAGE_DRIVER") {
		t.Errorf("expected driver error, got %v", err)
	}
}

func TestOpenApp_Memory(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	a, err := openApp(t.Context(), func() (*config.Config, error) { return cfg, nil })
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer a.Close()

	if _, err := a.tasks.Create(t.Context(), models.NewTask{Title: "Buy milk"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := a.tasks.List(t.Context()); len(got) != 1 {
		t.Errorf("expected 1 task, got %d", len(got))
	}
}

func TestServerRoutes(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	a, err := openApp(t.Context(), func() (*config.Config, error) { return cfg, nil })
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer a.Close()

	h := initHandlers(a)
	defer h.RateLimiter.Stop()
	server := initServer(a, h)
	if server.Addr != ":0" {
		t.Errorf("Addr = %q", server.Addr)
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/tasks", "application/json", strings.NewReader(`{"title":"Buy milk"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /tasks = %d", resp.StatusCode)
	}
	if got := a.tasks.List(t.Context()); len(got) != 1 || got[0].Title != "Buy milk" {
		t.Errorf("server did not write through the app store: %+v", got)
	}
}
