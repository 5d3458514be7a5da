// Package relay implements the resumable event-stream relay: a single
// background goroutine consumes the agent's SSE feed and republishes
// normalized events to subscribers, with a bounded replay buffer for
// catch-up and automatic reconnection with exponential backoff.
package relay

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"agentrelay/internal/event"
	"agentrelay/pkg/types"
)

// State is the connector lifecycle state.
type State string

const (
	StateConnecting State = "connecting"
	StateStreaming  State = "streaming"
	StateBackoff    State = "backoff"
	StateStopped    State = "stopped"
)

const (
	defaultBufferCapacity = 256
	defaultBackoffFloor   = 500 * time.Millisecond
	defaultBackoffCeiling = 8 * time.Second
	defaultHeartbeatEvery = 20 * time.Second
	subscriberChanSize    = 64
)

// Config holds construction parameters for a Manager. Zero values mean
// "unspecified" and are replaced by package defaults, mirroring the config
// loader contract.
type Config struct {
	// BaseURL of the agent process, e.g. "http://127.0.0.1:4096".
	BaseURL string
	// Directory is the initial target directory sent with each connection
	// attempt.
	Directory string
	// BufferCapacity bounds the replay buffer (default 256).
	BufferCapacity int
	// MetadataCap bounds the per-message metadata cache
	// (default 4x BufferCapacity).
	MetadataCap int
	BackoffFloor   time.Duration
	BackoffCeiling time.Duration
	HeartbeatEvery time.Duration
	// Notifier receives turn-completion notifications. Defaults to a nop.
	Notifier event.Notifier
	// StatusPublisher additionally receives every connectivity diagnostic.
	StatusPublisher StatusPublisher
	// HTTPClient used for upstream connections. Defaults to a client with a
	// 10s connect timeout and no overall timeout (streaming).
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Manager owns the relay's shared state and the background connector
// goroutine. Foreground calls (Subscribe, Snapshot, SetDirectory) only ever
// hold the mutex briefly; it is never held across a network read or a
// backoff sleep.
type Manager struct {
	cfg     Config
	log     zerolog.Logger
	client  *http.Client
	tracker *event.Tracker
	pub     StatusPublisher

	mu          sync.Mutex
	buffer      replayBuffer
	subs        map[int]*Subscription
	nextSub     int
	directory   string
	state       State
	lastEventID string
	lastError   string

	startedAt time.Time
	stopped   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Manager with defaults for everything but the upstream
// location.
func New(baseURL, directory string, log zerolog.Logger) *Manager {
	return NewWithConfig(Config{BaseURL: baseURL, Directory: directory, Logger: log})
}

// NewWithConfig creates a Manager, applying package defaults to unset
// fields. The connector does not run until Start is called.
func NewWithConfig(cfg Config) *Manager {
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = defaultBufferCapacity
	}
	if cfg.MetadataCap <= 0 {
		cfg.MetadataCap = 4 * cfg.BufferCapacity
	}
	if cfg.BackoffFloor <= 0 {
		cfg.BackoffFloor = defaultBackoffFloor
	}
	if cfg.BackoffCeiling <= 0 {
		cfg.BackoffCeiling = defaultBackoffCeiling
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = defaultHeartbeatEvery
	}
	if cfg.Notifier == nil {
		cfg.Notifier = event.NopNotifier{}
	}
	if cfg.StatusPublisher == nil {
		cfg.StatusPublisher = noopPublisher{}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		}
	}

	return &Manager{
		cfg:       cfg,
		log:       cfg.Logger,
		client:    cfg.HTTPClient,
		tracker:   event.NewTracker(cfg.Notifier, cfg.MetadataCap, cfg.Logger),
		pub:       cfg.StatusPublisher,
		buffer:    replayBuffer{cap: cfg.BufferCapacity},
		subs:      make(map[int]*Subscription),
		directory: cfg.Directory,
		state:     StateConnecting,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// Start launches the background connector goroutine.
func (m *Manager) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.startedAt = time.Now()
	go m.run(ctx)
}

// Stop signals the connector to shut down and waits for it to exit. The
// cooperative stop flag is checked every loop iteration and per parsed
// frame; the context cancellation additionally unblocks any in-flight
// network read.
func (m *Manager) Stop() {
	m.stopped.Store(true)
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// Snapshot returns an independent copy of the replay buffer in arrival
// order.
func (m *Manager) Snapshot() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer.snapshot()
}

// Subscription is one registered consumer: the snapshot taken at subscribe
// time plus live event and status channels. Slow subscribers never block the
// stream; events they cannot keep up with are dropped for them only.
type Subscription struct {
	id        int
	snapshot  []event.Event
	events    chan event.Event
	status    chan Status
	m         *Manager
	closeOnce sync.Once
}

// Snapshot is the replay buffer contents at subscribe time.
func (s *Subscription) Snapshot() []event.Event { return s.snapshot }

// Events delivers live normalized events in arrival order.
func (s *Subscription) Events() <-chan event.Event { return s.events }

// Status delivers connectivity diagnostics.
func (s *Subscription) Status() <-chan Status { return s.status }

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { s.m.unsubscribe(s.id) })
}

// Subscribe registers a consumer and delivers the current snapshot with it.
func (m *Manager) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	sub := &Subscription{
		id:       m.nextSub,
		snapshot: m.buffer.snapshot(),
		events:   make(chan event.Event, subscriberChanSize),
		status:   make(chan Status, 8),
		m:        m,
	}
	m.subs[sub.id] = sub
	subscribersGauge.Set(float64(len(m.subs)))
	return sub
}

func (m *Manager) unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(sub.events)
		close(sub.status)
	}
	subscribersGauge.Set(float64(len(m.subs)))
}

// SubscriberCount reports the number of registered consumers. Diagnostic
// only; delivery does not depend on it.
func (m *Manager) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// SetDirectory updates the target directory for future connection attempts.
// An in-flight stream is never interrupted; the change applies on the next
// reconnect.
func (m *Manager) SetDirectory(dir string) {
	m.mu.Lock()
	m.directory = dir
	m.mu.Unlock()
	m.log.Info().Str("directory", dir).Msg("target directory updated")
}

// Directory returns the current target directory.
func (m *Manager) Directory() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.directory
}

// Ready reports whether the connector is currently streaming.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateStreaming
}

// Status builds the diagnostic projection served by GET /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.StatusResponse{
		State:          string(m.state),
		Directory:      m.directory,
		LastEventID:    m.lastEventID,
		Subscribers:    len(m.subs),
		BufferLen:      m.buffer.len(),
		BufferCap:      m.buffer.cap,
		LastError:      m.lastError,
		UptimeSeconds:  int64(time.Since(m.startedAt).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	if s == StateStreaming {
		connectedGauge.Set(1)
	} else {
		connectedGauge.Set(0)
	}
}

// lastID returns the connector's resume position.
func (m *Manager) lastID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastEventID
}

// publish fans a diagnostic out to every subscriber's status channel and the
// injected publisher. Slow subscribers drop.
func (m *Manager) publish(st Status) {
	m.mu.Lock()
	for _, sub := range m.subs {
		select {
		case sub.status <- st:
		default:
		}
	}
	if st.Status == StatusError {
		m.lastError = st.Hint
	}
	m.mu.Unlock()
	m.pub.Publish(st)
}
