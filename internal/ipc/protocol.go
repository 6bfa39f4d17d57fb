package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/displayout/internal/displayout"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListPorts    CommandType = "LIST_PORTS"
	CommandSetPin       CommandType = "SET_PIN"
	CommandCallFunction CommandType = "CALL_FUNCTION"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Node             displayout.Snapshot `json:"node"`
	CustomResolution bool                `json:"custom_resolution"`
	UptimeSeconds    int64               `json:"uptime_seconds"`
	DaemonRunning    bool                `json:"daemon_running"`
}

// PortsData represents the data returned by LIST_PORTS. Ports holds the
// selectable monitor strings, starting with NONE.
type PortsData struct {
	Ports   []string `json:"ports"`
	Current string   `json:"current"`
}

// SetPinPayload represents the payload for SET_PIN. Value is the JSON form
// of the pin's type: {"width":W,"height":H} for Resolution, a bool for
// Fullscreen and VSync, a number for RefreshRate and a string for Monitor.
type SetPinPayload struct {
	Pin   string          `json:"pin"`
	Value json.RawMessage `json:"value"`
}

// CallFunctionPayload represents the payload for CALL_FUNCTION.
type CallFunctionPayload struct {
	Name string `json:"name"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
