package relay

import "time"

// backoff yields the reconnect delay sequence: floor, doubling per failure,
// capped at ceiling. A successful connection resets it to the floor.
type backoff struct {
	cur     time.Duration
	floor   time.Duration
	ceiling time.Duration
}

func newBackoff(floor, ceiling time.Duration) *backoff {
	return &backoff{cur: floor, floor: floor, ceiling: ceiling}
}

// next returns the delay to sleep now and advances the sequence.
func (b *backoff) next() time.Duration {
	d := b.cur
	b.cur *= 2
	if b.cur > b.ceiling {
		b.cur = b.ceiling
	}
	return d
}

func (b *backoff) reset() { b.cur = b.floor }
