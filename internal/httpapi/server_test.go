package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/internal/relay"
	"agentrelay/pkg/types"
)

// newRelayFixture wires a scripted upstream SSE endpoint to a running relay
// manager and waits until both seeded events have been buffered.
func newRelayFixture(t *testing.T) *relay.Manager {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		io.WriteString(w, "id: e1\ndata: {\"type\":\"session.idle\",\"properties\":{}}\n\n")
		io.WriteString(w, "id: e2\ndata: {\"type\":\"message.updated\",\"properties\":{\"id\":\"m1\",\"role\":\"user\"}}\n\n")
		fl.Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(upstream.Close)

	mgr := relay.NewWithConfig(relay.Config{
		BaseURL:        upstream.URL,
		Directory:      "/work",
		BackoffFloor:   5 * time.Millisecond,
		BackoffCeiling: 20 * time.Millisecond,
		Logger:         zerolog.Nop(),
	})
	mgr.Start()
	t.Cleanup(mgr.Stop)

	require.Eventually(t, func() bool { return len(mgr.Snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)
	return mgr
}

func TestSnapshotEndpoint(t *testing.T) {
	mgr := newRelayFixture(t)
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body struct {
		Events []json.RawMessage `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Events, 2)
	assert.JSONEq(t, `{"type":"session.idle","properties":{}}`, string(body.Events[0]))
}

func TestStatusEndpoint(t *testing.T) {
	mgr := newRelayFixture(t)
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var st types.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "streaming", st.State)
	assert.Equal(t, "/work", st.Directory)
	assert.Equal(t, "e2", st.LastEventID)
	assert.Equal(t, 2, st.BufferLen)
}

func TestDirectoryEndpoint(t *testing.T) {
	mgr := newRelayFixture(t)
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	post := func(contentType, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(srv.URL+"/directory", contentType, strings.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	resp := post("application/json", `{"directory":"/elsewhere"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/elsewhere", mgr.Directory())

	resp = post("text/plain", `{"directory":"/x"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = post("application/json", `{"directory"`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post("application/json", `{"directory":"   "}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e types.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "directory is required", e.Error)

	// The rejected bodies must not have changed the directory.
	assert.Equal(t, "/elsewhere", mgr.Directory())
}

func TestHealthProbes(t *testing.T) {
	mgr := newRelayFixture(t)
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "streaming", string(body))
}

func TestReadyzDisconnected(t *testing.T) {
	// A manager that never connected reports not ready.
	mgr := relay.NewWithConfig(relay.Config{BaseURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "disconnected", string(body))
}

func TestEventsStreamReplaysSnapshot(t *testing.T) {
	mgr := newRelayFixture(t)
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The replay snapshot arrives first, re-framed with the upstream ids.
	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if len(lines) >= 6 {
			break
		}
	}
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "id: e1", lines[0])
	assert.Contains(t, lines[1], `"session.idle"`)
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "id: e2", lines[3])
	assert.Contains(t, lines[4], `"message.updated"`)
	assert.Equal(t, "", lines[5])
}

func TestMetricsEndpoint(t *testing.T) {
	mgr := newRelayFixture(t)
	srv := httptest.NewServer(NewMux(mgr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "agentrelay_relay_frames_total")
}

var _ Service = (*relay.Manager)(nil)
