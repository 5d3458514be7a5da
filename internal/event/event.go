// Package event defines the normalized agent event model and the turn
// completion tracking built on top of it.
package event

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Event is a normalized agent event. Raw holds the full JSON object
// (type plus properties); Type is the extracted discriminator. ID is the
// SSE frame id the event arrived with, if any. Events are immutable once
// produced.
type Event struct {
	Type string
	ID   string
	Raw  json.RawMessage
}

// MarshalJSON emits the normalized JSON object as-is.
func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.Raw) == 0 {
		return []byte("null"), nil
	}
	return e.Raw, nil
}

// Normalize unwraps an envelope payload and extracts the type discriminator.
// The upstream feed delivers either a bare event {"type": ..., "properties":
// ...} or an envelope {"directory": ..., "payload": <event>}; both are
// accepted. id is the SSE frame id ("" if the frame carried none).
func Normalize(data []byte, id string) Event {
	raw := data
	if payload := gjson.GetBytes(data, "payload"); payload.Exists() {
		raw = []byte(payload.Raw)
	}
	return Event{
		Type: gjson.GetBytes(raw, "type").String(),
		ID:   id,
		Raw:  raw,
	}
}
