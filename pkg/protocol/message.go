// Package protocol defines the JSON message types shared by the web
// server, the telemetry stream, and its consumers.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/terrapen/go-terrapen/pkg/motion"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// MessageType identifies the type of a websocket message.
type MessageType string

const (
	// Engine -> consumer messages.
	TypeState MessageType = "state" // Robot state snapshot
	TypeTrail MessageType = "trail" // Full trail dump

	// Consumer -> engine messages.
	TypeCommand MessageType = "command" // Motion command

	// Responses.
	TypeAck   MessageType = "ack"
	TypeError MessageType = "error"

	// Bidirectional health checks.
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all websocket messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// StateData wraps an engine snapshot with the sequencer's view of the
// queued work.
type StateData struct {
	sim.State
	JobID          string  `json:"job_id,omitempty"`
	QueueLength    int     `json:"queue_length,omitempty"`
	QueueRemaining float64 `json:"queue_remaining,omitempty"` // seconds
}

// CommandData is the payload of a TypeCommand message.
type CommandData struct {
	Command motion.Command `json:"command"`
}

// AckData acknowledges an accepted command.
type AckData struct {
	JobID string `json:"job_id,omitempty"`
}

// ErrorData reports a rejected command or server-side failure.
type ErrorData struct {
	Error string `json:"error"`
}
