// Package apps implements the application launcher capability handler.
// Launch requests in English and Hindi map to per-OS commands.
package apps

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/arenlabs/aren/internal/domain/capability"
)

// Runner starts an external command without waiting for it to finish.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Start()
}

type application struct {
	name     string
	keywords []string
	commands map[string][]string
}

var applications = []application{
	{
		name:     "notepad",
		keywords: []string{"notepad", "नोटपैड", "note pad", "open notepad", "notepad kholo"},
		commands: map[string][]string{
			"windows": {"cmd", "/c", "start", "notepad.exe"},
			"linux":   {"gedit"},
			"darwin":  {"open", "-a", "TextEdit"},
		},
	},
	{
		name:     "calculator",
		keywords: []string{"calculator", "कैलकुलेटर", "calc", "calculator kholo", "open calculator"},
		commands: map[string][]string{
			"windows": {"cmd", "/c", "start", "calc.exe"},
			"linux":   {"gnome-calculator"},
			"darwin":  {"open", "-a", "Calculator"},
		},
	},
	{
		name:     "chrome",
		keywords: []string{"chrome", "क्रोम", "google chrome", "chrome kholo", "open chrome"},
		commands: map[string][]string{
			"windows": {"cmd", "/c", "start", "chrome.exe"},
			"linux":   {"google-chrome"},
			"darwin":  {"open", "-a", "Google Chrome"},
		},
	},
	{
		name:     "firefox",
		keywords: []string{"firefox", "mozilla", "फायरफॉक्स", "firefox kholo", "open firefox"},
		commands: map[string][]string{
			"windows": {"cmd", "/c", "start", "firefox.exe"},
			"linux":   {"firefox"},
			"darwin":  {"open", "-a", "Firefox"},
		},
	},
}

// Handler launches local applications by name.
type Handler struct {
	goos   string
	run    Runner
	logger *slog.Logger
}

// New creates a launcher for the current operating system.
func New(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{goos: runtime.GOOS, run: execRunner, logger: logger}
}

// Name returns "launch_app".
func (h *Handler) Name() string { return capability.LaunchApp }

// Extract passes the raw input through; keyword matching happens in Invoke.
func (h *Handler) Extract(input string) (capability.Args, bool) {
	return capability.Args{"input": input}, true
}

// Invoke matches the request against the known applications and starts the
// per-OS command. Launch failures produce an explanatory string, not an error.
func (h *Handler) Invoke(ctx context.Context, args capability.Args) (string, error) {
	input := strings.ToLower(args["input"])

	for _, app := range applications {
		if !matchesAny(input, app.keywords) {
			continue
		}

		argv, ok := app.commands[h.goos]
		if !ok {
			return fmt.Sprintf("Sorry, your operating system (%s) is not supported.", h.goos), nil
		}

		if err := h.run(ctx, argv[0], argv[1:]...); err != nil {
			h.logger.Error("app launch failed", "app", app.name, "error", err)
			return fmt.Sprintf("Failed to launch %s: %v", app.name, err), nil
		}

		h.logger.Info("app launched", "app", app.name)
		return title(app.name) + " launched successfully!", nil
	}

	return "Sorry, I couldn't recognize the application to launch.", nil
}

func matchesAny(input string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(input, kw) {
			return true
		}
	}
	return false
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
