package sse

import (
	"bytes"
	"fmt"
)

// Event names pushed over the live-update stream.
const (
	EventConnected = "connected"
	EventUnread    = "unread"
	EventMessage   = "message"
	EventRead      = "read"
)

// Event is one framed server-sent event: a name plus a JSON payload.
type Event struct {
	Name string
	Data []byte
}

// Marshal renders the SSE wire frame: "event: <name>\ndata: <json>\n\n".
func (e Event) Marshal() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "event: %s\n", e.Name)
	fmt.Fprintf(&buf, "data: %s\n\n", e.Data)
	return buf.Bytes()
}

// Heartbeat is a comment-only keep-alive line. Clients ignore it; it only
// keeps intermediaries from timing out the idle connection.
var Heartbeat = []byte(": ping\n\n")
