// Package sse streams cache invalidations to open community site previews
// over Server-Sent Events, so a page can reload when its content changes.
package sse

import (
	"strings"
	"time"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
	// EventInvalidated reports that a cache tag was cleared.
	EventInvalidated EventType = "cache.invalidated"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Tag is the invalidated cache tag; clients filter on it.
	Tag string `json:"-"`
}

// InvalidatedData is the payload of an EventInvalidated event.
type InvalidatedData struct {
	Tag string `json:"tag"`
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data:      struct{}{},
	}
}

// NewInvalidatedEvent creates an event for a cleared cache tag.
func NewInvalidatedEvent(tag string) Event {
	return Event{
		Type:      EventInvalidated,
		Timestamp: time.Now(),
		Data:      InvalidatedData{Tag: tag},
		Tag:       tag,
	}
}

// matchesHost reports whether tag belongs to a site served under host.
// Every site tag is "{host}-{suffix}". An empty host matches everything.
func matchesHost(tag, host string) bool {
	if host == "" {
		return true
	}
	return strings.HasPrefix(tag, host+"-")
}
