// Package sse provides an incremental Server-Sent-Events frame decoder.
//
// The decoder accepts raw byte chunks exactly as they arrive from the
// network and never assumes chunk boundaries align with line or frame
// boundaries. It is safe to start mid-stream with a fresh Parser after a
// reconnect.
package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Frame is one complete SSE message unit: the joined data payload plus the
// optional event id carried by an "id:" field.
type Frame struct {
	Data []byte
	ID   string
}

// ParseError describes a frame whose data payload was not valid JSON. The
// frame is dropped; Raw carries the offending payload for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("sse: malformed frame payload: %v", e.Err)
}

// Result is the outcome of decoding one frame boundary: exactly one of
// Frame or Err is set.
type Result struct {
	Frame *Frame
	Err   *ParseError
}

// Parser assembles SSE frames from arbitrary byte chunks.
// The zero value is ready to use.
type Parser struct {
	buf  []byte       // unconsumed input
	data bytes.Buffer // pending data lines of the current frame
	id   string       // pending event id of the current frame
}

// Feed appends chunk to the internal buffer and returns a Result for every
// frame completed by it, in input order. Partial lines and partial frames
// stay buffered until more input arrives.
func (p *Parser) Feed(chunk []byte) []Result {
	p.buf = append(p.buf, chunk...)

	var out []Result
	for {
		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			break
		}
		line := p.buf[:idx]
		p.buf = p.buf[idx+1:]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if r, ok := p.line(line); ok {
			out = append(out, r)
		}
	}
	return out
}

// Reset discards all buffered input and any partially assembled frame.
func (p *Parser) Reset() {
	p.buf = nil
	p.data.Reset()
	p.id = ""
}

// line consumes one complete line and reports a Result when the line
// terminates a frame.
func (p *Parser) line(line []byte) (Result, bool) {
	switch {
	case len(line) == 0:
		return p.endFrame()
	case line[0] == ':':
		// Comment / keep-alive.
		return Result{}, false
	case bytes.HasPrefix(line, []byte("data:")):
		rest := bytes.TrimLeft(line[len("data:"):], " \t")
		if p.data.Len() > 0 {
			p.data.WriteByte('\n')
		}
		p.data.Write(rest)
	case bytes.HasPrefix(line, []byte("id:")):
		p.id = string(bytes.TrimSpace(line[len("id:"):]))
	}
	return Result{}, false
}

// endFrame dispatches the pending frame on a blank line. Buffers are cleared
// whether the payload was valid or not.
func (p *Parser) endFrame() (Result, bool) {
	defer func() {
		p.data.Reset()
		p.id = ""
	}()

	if p.data.Len() == 0 {
		return Result{}, false
	}
	payload := append([]byte(nil), p.data.Bytes()...)
	if !json.Valid(payload) {
		return Result{Err: &ParseError{
			Raw: string(payload),
			Err: fmt.Errorf("invalid JSON"),
		}}, true
	}
	return Result{Frame: &Frame{Data: payload, ID: p.id}}, true
}
