package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agentrelay/internal/event"
	"agentrelay/internal/sse"
)

const readChunkSize = 4096

// run is the connector state machine: Connecting -> Streaming -> Backoff ->
// Connecting, with Stopped reachable from any state via the cooperative stop
// flag. It is the sole owner of the connection state (resume id, backoff
// delay, heartbeat clock).
func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	defer m.setState(StateStopped)

	b := newBackoff(m.cfg.BackoffFloor, m.cfg.BackoffCeiling)
	m.log.Info().Str("base_url", m.cfg.BaseURL).Msg("relay loop starting")

	for !m.stopping(ctx) {
		m.setState(StateConnecting)
		dir := m.Directory()

		resp, err := m.connect(ctx, dir)
		switch {
		case err != nil:
			if m.stopping(ctx) {
				return
			}
			m.log.Warn().Err(err).Str("directory", dir).Msg("connect failed")
			m.publish(Status{Status: StatusError, Hint: err.Error()})
		default:
			b.reset()
			m.setState(StateStreaming)
			m.log.Info().Str("directory", dir).Msg("stream connected")
			m.publish(Status{Status: StatusConnected, Directory: dir})

			if err := m.stream(ctx, resp.Body); err != nil {
				if m.stopping(ctx) {
					return
				}
				m.log.Warn().Err(err).Msg("stream read failed")
				m.publish(Status{Status: StatusError, Hint: fmt.Sprintf("stream read failed: %v", err)})
			}
		}

		if m.stopping(ctx) {
			return
		}

		m.setState(StateBackoff)
		delay := b.next()
		reconnectsTotal.Inc()
		m.publish(Status{
			Status:      StatusReconnecting,
			DelayMS:     delay.Milliseconds(),
			LastEventID: m.lastID(),
		})
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// connect issues the upstream request for one streaming session. The target
// directory is read once per attempt; resumption rides on Last-Event-ID.
func (m *Manager) connect(ctx context.Context, dir string) (*http.Response, error) {
	u := strings.TrimRight(m.cfg.BaseURL, "/") + "/global/event?directory=" + url.QueryEscape(dir)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if id := m.lastID(); id != "" {
		req.Header.Set("Last-Event-ID", id)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("upstream HTTP %d", resp.StatusCode)
	}
	return resp, nil
}

// stream feeds the response body through the frame parser until the stream
// ends, the read fails, or stop is observed. A clean end returns nil; the
// caller transitions to Backoff either way.
func (m *Manager) stream(ctx context.Context, body io.ReadCloser) error {
	defer body.Close()

	var p sse.Parser
	buf := make([]byte, readChunkSize)
	lastHeartbeat := time.Now()

	for {
		if m.stopping(ctx) {
			return nil
		}
		n, err := body.Read(buf)
		if n > 0 {
			// Liveness signal: any upstream bytes count, including comment
			// keep-alives that never become frames.
			if time.Since(lastHeartbeat) > m.cfg.HeartbeatEvery {
				lastHeartbeat = time.Now()
				m.publish(Status{
					Status:      StatusConnected,
					Heartbeat:   true,
					Subscribers: m.SubscriberCount(),
				})
			}
			for _, res := range p.Feed(buf[:n]) {
				if m.stopping(ctx) {
					return nil
				}
				if res.Err != nil {
					framesDroppedTotal.WithLabelValues("parse").Inc()
					m.log.Warn().Err(res.Err.Err).Msg("dropping malformed frame")
					m.publish(Status{
						Status: StatusError,
						Hint:   fmt.Sprintf("JSON parse failed: %v", res.Err.Err),
						Raw:    res.Err.Raw,
					})
					continue
				}
				m.handleFrame(*res.Frame)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleFrame routes one decoded frame through normalization, completion
// tracking, the replay buffer, and subscriber delivery as a single ordered
// step, then advances the resume id.
func (m *Manager) handleFrame(f sse.Frame) {
	framesTotal.Inc()
	ev := event.Normalize(f.Data, f.ID)
	out := m.tracker.Observe(ev)
	if out.CompletedID != "" {
		notificationsTotal.Inc()
	}

	m.mu.Lock()
	if out.Deliver {
		m.buffer.push(ev)
		bufferSizeGauge.Set(float64(m.buffer.len()))
		for _, sub := range m.subs {
			select {
			case sub.events <- ev:
			default:
				// Slow subscriber; drop for it only.
			}
		}
	}
	if f.ID != "" {
		m.lastEventID = f.ID
	}
	m.mu.Unlock()

	if !out.Deliver {
		framesDroppedTotal.WithLabelValues("placeholder").Inc()
	}
}

func (m *Manager) stopping(ctx context.Context) bool {
	return m.stopped.Load() || ctx.Err() != nil
}
