package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBareEvent(t *testing.T) {
	ev := Normalize([]byte(`{"type":"session.idle","properties":{}}`), "e1")
	assert.Equal(t, "session.idle", ev.Type)
	assert.Equal(t, "e1", ev.ID)
	assert.JSONEq(t, `{"type":"session.idle","properties":{}}`, string(ev.Raw))
}

func TestNormalizeUnwrapsEnvelope(t *testing.T) {
	data := `{"directory":"/home/x","payload":{"type":"message.updated","properties":{"id":"m1"}}}`
	ev := Normalize([]byte(data), "")
	assert.Equal(t, "message.updated", ev.Type)
	assert.Empty(t, ev.ID)
	assert.JSONEq(t, `{"type":"message.updated","properties":{"id":"m1"}}`, string(ev.Raw))
}

func TestNormalizeMissingType(t *testing.T) {
	ev := Normalize([]byte(`{"properties":{}}`), "")
	assert.Empty(t, ev.Type)
}

func TestEventMarshalJSON(t *testing.T) {
	ev := Normalize([]byte(`{"type":"t","properties":{"a":1}}`), "e2")
	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"t","properties":{"a":1}}`, string(out))

	out, err = json.Marshal(Event{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
