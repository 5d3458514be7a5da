package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDesktopNotifyDoesNotBlockCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	n := NewDesktopNotifier(zerolog.Nop())
	n.run = func(ctx context.Context, title, body string) error {
		close(started)
		<-release
		return nil
	}

	begin := time.Now()
	n.Notify("t", "b")
	elapsed := time.Since(begin)

	// The dispatch command is still blocked, yet Notify already returned.
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch never started")
	}
	assert.Less(t, elapsed, 500*time.Millisecond)
	close(release)
}

func TestDesktopNotifySwallowsDispatchFailure(t *testing.T) {
	done := make(chan struct{})
	n := NewDesktopNotifier(zerolog.Nop())
	n.run = func(ctx context.Context, title, body string) error {
		defer close(done)
		return errors.New("no notification daemon")
	}

	n.Notify("t", "b") // must not panic or propagate
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch never ran")
	}
}

func TestEscapeAppleScript(t *testing.T) {
	assert.Equal(t, `say \"hi\"`, escapeAppleScript(`say "hi"`))
	assert.Equal(t, `a\\b`, escapeAppleScript(`a\b`))
	assert.Equal(t, "plain", escapeAppleScript("plain"))
}
