// Package types holds the wire types shared between the relay daemon and
// its HTTP consumers.
package types

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Connector lifecycle state (connecting, streaming, backoff, stopped).
	// example: streaming
	State string `json:"state" example:"streaming"`
	// Target directory used for the current/next connection attempt.
	// example: /home/user/project
	Directory string `json:"directory" example:"/home/user/project"`
	// Last SSE event id observed; sent as Last-Event-ID on reconnect.
	// example: evt_01HZX
	LastEventID string `json:"last_event_id,omitempty" example:"evt_01HZX"`
	// Number of registered downstream subscribers (diagnostic only).
	// example: 1
	Subscribers int `json:"subscribers" example:"1"`
	// Events currently held in the replay buffer.
	// example: 42
	BufferLen int `json:"buffer_len" example:"42"`
	// Replay buffer capacity.
	// example: 256
	BufferCap int `json:"buffer_cap" example:"256"`
	// Last connection error hint, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the relay in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// DirectoryRequest is the payload of POST /directory.
type DirectoryRequest struct {
	// New target directory; takes effect on the next reconnect.
	// example: /home/user/project
	Directory string `json:"directory" example:"/home/user/project"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
