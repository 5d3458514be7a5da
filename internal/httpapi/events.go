package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"agentrelay/internal/relay"
)

// keepAliveEvery paces comment keep-alives on idle downstream streams.
const keepAliveEvery = 15 * time.Second

// serveEvents streams the relay to one consumer: the replay snapshot first,
// then live events, with connectivity diagnostics interleaved as "status"
// events. The subscription registers the consumer for the lifetime of the
// request.
func serveEvents(svc Service, w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := svc.Subscribe()
	defer sub.Close()

	for _, ev := range sub.Snapshot() {
		writeSSE(w, "", ev.ID, ev.Raw)
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			writeSSE(w, "", ev.ID, ev.Raw)
			flusher.Flush()
		case st, open := <-sub.Status():
			if !open {
				return
			}
			writeStatus(w, st)
			flusher.Flush()
		case <-ticker.C:
			io.WriteString(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeStatus(w io.Writer, st relay.Status) {
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	writeSSE(w, "status", "", data)
}

// writeSSE emits one frame. Multi-line payloads become multiple data: lines
// per the SSE framing rules.
func writeSSE(w io.Writer, name, id string, data []byte) {
	if name != "" {
		io.WriteString(w, "event: "+name+"\n")
	}
	if id != "" {
		io.WriteString(w, "id: "+id+"\n")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		io.WriteString(w, "data: ")
		w.Write(line)
		io.WriteString(w, "\n")
	}
	io.WriteString(w, "\n")
}
