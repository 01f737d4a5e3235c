package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeInterpretRequest MessageType = "interpret_request"
	TypeClientControl    MessageType = "client_control"
	TypeSessionStarted   MessageType = "session_started"
	TypeProgress         MessageType = "progress"
	TypeArtifact         MessageType = "artifact"
	TypeErrorEvent       MessageType = "error_event"
)

// Progress stages, in the order a session normally emits them.
const (
	StageVisionStarted      = "vision_started"
	StageVisionDone         = "vision_done"
	StageTurnGenerated      = "turn_generated"
	StageSegmentSynthesized = "segment_synthesized"
	StageCompleted          = "completed"
	StageFailed             = "failed"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// InterpretRequest is both the POST /v1/interpret body and the first websocket
// message. Persona2 empty means narration.
type InterpretRequest struct {
	Type     MessageType `json:"type,omitempty"`
	Image    string      `json:"image"`
	Persona1 string      `json:"persona1"`
	Persona2 string      `json:"persona2,omitempty"`
	Language string      `json:"language,omitempty"`
	Rounds   int         `json:"rounds,omitempty"`
	GuestID  string      `json:"guest_id,omitempty"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

type SessionStarted struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Mode      string      `json:"mode"`
	Turns     int         `json:"turns"`
}

// Progress reports one pipeline step. Index and Total count turns for the turn
// and segment stages.
type Progress struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Stage     string      `json:"stage"`
	Status    string      `json:"status,omitempty"`
	Persona   string      `json:"persona,omitempty"`
	Round     int         `json:"round,omitempty"`
	Index     int         `json:"index,omitempty"`
	Total     int         `json:"total,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	TSMs      int64       `json:"ts_ms"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeInterpretRequest:
		var msg InterpretRequest
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if strings.TrimSpace(msg.Image) == "" || strings.TrimSpace(msg.Persona1) == "" {
			return nil, errors.New("invalid interpret_request")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
