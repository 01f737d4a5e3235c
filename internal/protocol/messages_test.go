package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseClientMessageInterpretRequest(t *testing.T) {
	raw := []byte(`{"type":"interpret_request","image":"data:image/png;base64,AAAA","persona1":"poet","persona2":"scientist","language":"fr","rounds":2}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	req, ok := msg.(InterpretRequest)
	if !ok {
		t.Fatalf("message type = %T, want InterpretRequest", msg)
	}
	if req.Persona2 != "scientist" || req.Language != "fr" || req.Rounds != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseClientMessageRejectsIncompleteRequest(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"interpret_request","persona1":"poet"}`)); err == nil {
		t.Fatalf("request without image should be rejected")
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageControl(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"client_control","session_id":"s1","action":"cancel"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	control, ok := msg.(ClientControl)
	if !ok || control.Action != "cancel" {
		t.Fatalf("message = %#v", msg)
	}
	if _, err := ParseClientMessage([]byte(`{"type":"client_control","action":"cancel"}`)); err == nil {
		t.Fatalf("control without session should be rejected")
	}
}

func TestProgressOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(Progress{Type: TypeProgress, SessionID: "s1", Stage: StageVisionStarted, TSMs: 1})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(raw), "persona") || strings.Contains(string(raw), "round") {
		t.Fatalf("unexpected fields in %s", raw)
	}
}
