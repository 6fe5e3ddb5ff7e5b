package types

import "encoding/json"

// Message types exchanged with dashboard websocket clients
const (
	MsgTypeFilters  = "filters"
	MsgTypeSnapshot = "snapshot"
	MsgTypeError    = "error"
)

// ClientMessage is sent by a dashboard to change its view
type ClientMessage struct {
	Type    string      `json:"type"`
	Filters FilterState `json:"filters"`
}

// ServerMessage wraps a payload pushed to a dashboard
type ServerMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	Err  string          `json:"error,omitempty"`
}
