package relay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/internal/event"
)

func mkEvent(i int) event.Event {
	return event.Normalize([]byte(fmt.Sprintf(`{"type":"t","properties":{"n":%d}}`, i)), fmt.Sprintf("e%d", i))
}

func TestBufferKeepsNewestWithinCapacity(t *testing.T) {
	b := replayBuffer{cap: 3}
	for i := 0; i < 5; i++ {
		b.push(mkEvent(i))
	}
	require.Equal(t, 3, b.len())

	snap := b.snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "e2", snap[0].ID)
	assert.Equal(t, "e3", snap[1].ID)
	assert.Equal(t, "e4", snap[2].ID)
}

func TestSnapshotIsIndependent(t *testing.T) {
	b := replayBuffer{cap: 4}
	b.push(mkEvent(0))
	snap := b.snapshot()

	b.push(mkEvent(1))
	b.push(mkEvent(2))

	require.Len(t, snap, 1)
	assert.Equal(t, "e0", snap[0].ID)
	assert.Equal(t, 3, b.len())
}

func TestSnapshotEmpty(t *testing.T) {
	b := replayBuffer{cap: 2}
	assert.Empty(t, b.snapshot())
}
