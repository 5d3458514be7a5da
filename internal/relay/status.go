package relay

import "sync"

// Diagnostic status values carried by Status.Status.
const (
	StatusConnected    = "connected"
	StatusError        = "error"
	StatusReconnecting = "reconnecting"
)

// Status is one connectivity diagnostic. The same payload reaches every
// subscriber's status channel and the injected StatusPublisher.
type Status struct {
	Status      string `json:"status"`
	Hint        string `json:"hint,omitempty"`
	DelayMS     int64  `json:"delay_ms,omitempty"`
	LastEventID string `json:"last_event_id,omitempty"`
	Heartbeat   bool   `json:"heartbeat,omitempty"`
	Subscribers int    `json:"subscribers,omitempty"`
	Directory   string `json:"directory,omitempty"`
	// Raw carries the offending payload on parse-error diagnostics.
	Raw string `json:"raw,omitempty"`
}

// StatusPublisher receives connectivity diagnostics from the connector.
// Implementations should be lightweight and non-blocking; Publish must not
// panic.
type StatusPublisher interface {
	Publish(Status)
}

// noopPublisher is the default; it drops diagnostics.
type noopPublisher struct{}

func (noopPublisher) Publish(Status) {}

// MemoryPublisher stores diagnostics in memory for tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	statuses []Status
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(s Status) {
	p.mu.Lock()
	p.statuses = append(p.statuses, s)
	p.mu.Unlock()
}

// Statuses returns a copy of the recorded diagnostics.
func (p *MemoryPublisher) Statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Status, len(p.statuses))
	copy(out, p.statuses)
	return out
}
