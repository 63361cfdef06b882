// Package telemetry defines the typed event structs that flow over the
// WebSocket connection between tled and its clients.
package telemetry

import "time"

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat        EventType = "heartbeat"
	EventState            EventType = "state"
	EventLog              EventType = "log"
	EventParsed           EventType = "parsed"
	EventCatalogRefreshed EventType = "catalog_refreshed"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type      EventType `json:"type"`
	TS        string    `json:"ts"`
	Component string    `json:"component,omitempty"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching the
// timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// NewEvent stamps an envelope with the current time.
func NewEvent(t EventType, component string) Event {
	return Event{Type: t, TS: NowTS(), Component: component}
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// StateTransition is emitted whenever the daemon moves between operating
// states (e.g. IDLE -> REFRESHING).
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
}

// LogLine carries a human-readable log message at a severity level.
type LogLine struct {
	Event
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Parsed reports the outcome of one /api/parse request. Kind and Error are
// set only on single-set failures; Accepted and Rejected only on bulk parses.
type Parsed struct {
	Event
	RequestID     string `json:"request_id"`
	OK            bool   `json:"ok"`
	CatalogNumber int    `json:"catalog_number,omitempty"`
	Name          string `json:"name,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Error         string `json:"error,omitempty"`
	Accepted      int    `json:"accepted,omitempty"`
	Rejected      int    `json:"rejected,omitempty"`
}

// CatalogRefreshed is emitted after the catalog store reloads.
type CatalogRefreshed struct {
	Event
	Source   string `json:"source"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}
