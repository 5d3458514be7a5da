package event

import (
	"context"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notifier delivers a desktop notification. Implementations are best-effort:
// they must not block the caller for long and must swallow their own
// failures (a lost notification is never an error the stream cares about).
type Notifier interface {
	Notify(title, body string)
}

// NopNotifier drops notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}

// MemoryNotifier records notifications in memory for tests.
type MemoryNotifier struct {
	mu    sync.Mutex
	calls []Notification
}

// Notification is one recorded Notify call.
type Notification struct {
	Title string
	Body  string
}

func NewMemoryNotifier() *MemoryNotifier { return &MemoryNotifier{} }

func (n *MemoryNotifier) Notify(title, body string) {
	n.mu.Lock()
	n.calls = append(n.calls, Notification{Title: title, Body: body})
	n.mu.Unlock()
}

// Calls returns a copy of the recorded notifications.
func (n *MemoryNotifier) Calls() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.calls))
	copy(out, n.calls)
	return out
}

// DesktopNotifier shells out to the platform notification command
// (notify-send on Linux, osascript on macOS). Failures are logged at debug
// level and otherwise ignored.
type DesktopNotifier struct {
	log zerolog.Logger
	run func(ctx context.Context, title, body string) error
}

func NewDesktopNotifier(log zerolog.Logger) *DesktopNotifier {
	return &DesktopNotifier{log: log, run: dispatchNotification}
}

// Notify returns immediately; the platform command runs on its own goroutine
// with a short deadline so a stuck notification daemon cannot stall the
// stream that fired it.
func (n *DesktopNotifier) Notify(title, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := n.run(ctx, title, body); err != nil {
			n.log.Debug().Err(err).Str("title", title).Msg("notification dispatch failed")
		}
	}()
}

func dispatchNotification(ctx context.Context, title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := `display notification "` + escapeAppleScript(body) + `" with title "` + escapeAppleScript(title) + `" sound name "Glass"`
		cmd = exec.CommandContext(ctx, "osascript", "-e", script)
	default:
		cmd = exec.CommandContext(ctx, "notify-send", title, body)
	}
	return cmd.Run()
}

func escapeAppleScript(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
