package relay

import "agentrelay/internal/event"

// replayBuffer is a fixed-capacity FIFO of normalized events. It is not
// concurrency-safe on its own; the Manager mutex guards it.
type replayBuffer struct {
	cap   int
	items []event.Event
}

// push appends e, evicting the oldest entry when capacity is exceeded.
func (b *replayBuffer) push(e event.Event) {
	b.items = append(b.items, e)
	if len(b.items) > b.cap {
		b.items = append(b.items[:0], b.items[1:]...)
	}
}

// snapshot returns an independent copy in arrival order. Later pushes do not
// affect a previously taken snapshot.
func (b *replayBuffer) snapshot() []event.Event {
	out := make([]event.Event, len(b.items))
	copy(out, b.items)
	return out
}

func (b *replayBuffer) len() int { return len(b.items) }
