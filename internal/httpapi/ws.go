package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/lenstalk/internal/protocol"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 120 * time.Second
	wsReadLimit    = 16 << 20
)

type artifactEvent struct {
	Type protocol.MessageType `json:"type"`
	interpretResponse
}

// handleInterpretWS expects an interpret_request as the first message, then
// streams progress events and finishes with an artifact or error_event. A
// client_control cancel message or a closed socket cancels the pipeline.
func (s *Server) handleInterpretWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.metrics.Event("ws_connected")

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	writeNow := func(v any, t protocol.MessageType) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(v); err != nil {
			return err
		}
		s.countWS("outbound", t)
		return nil
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	parsed, err := protocol.ParseClientMessage(data)
	if err == nil {
		if _, ok := parsed.(protocol.InterpretRequest); !ok {
			err = errors.New("first message must be interpret_request")
		}
	}
	if err != nil {
		_ = writeNow(protocol.ErrorEvent{
			Type:   protocol.TypeErrorEvent,
			Code:   "invalid_client_message",
			Source: "gateway",
			Detail: err.Error(),
		}, protocol.TypeErrorEvent)
		return
	}
	s.countWS("inbound", protocol.TypeInterpretRequest)
	// The pipeline may outlast the handshake deadline.
	_ = conn.SetReadDeadline(time.Time{})

	rn, err := s.prepare(r.Context(), parsed.(protocol.InterpretRequest), r.RemoteAddr)
	if err != nil {
		re := asRequestError(err)
		_ = writeNow(protocol.ErrorEvent{
			Type:   protocol.TypeErrorEvent,
			Code:   re.code,
			Source: "gateway",
			Detail: re.err.Error(),
		}, protocol.TypeErrorEvent)
		return
	}
	defer rn.cancel()

	// Writes stay on one goroutine; progress is dropped when the queue is full.
	outbound := make(chan any, 256)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range outbound {
			if err := writeNow(msg, messageTypeOf(msg)); err != nil {
				s.metrics.Event("ws_write_error")
				rn.cancel()
				for range outbound {
				}
				return
			}
		}
	}()

	outbound <- protocol.SessionStarted{
		Type:      protocol.TypeSessionStarted,
		SessionID: rn.session.ID,
		Mode:      rn.session.Mode,
		Turns:     rn.session.TurnsTotal,
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		resp, err := s.execute(rn, func(ev protocol.Progress) {
			select {
			case outbound <- ev:
			default:
				s.countWS("outbound_dropped", protocol.TypeProgress)
			}
		}, true)
		if err != nil {
			re := asRequestError(err)
			outbound <- protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: rn.session.ID,
				Code:      re.code,
				Source:    "pipeline",
				Retryable: re.status >= 500,
				Detail:    re.err.Error(),
			}
			return
		}
		outbound <- artifactEvent{Type: protocol.TypeArtifact, interpretResponse: resp}
	}()

	// The reader only watches for cancel requests and disconnects.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				rn.cancel()
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}
			msg, err := protocol.ParseClientMessage(data)
			if err != nil {
				continue
			}
			if ctl, ok := msg.(protocol.ClientControl); ok && ctl.Action == "cancel" && ctl.SessionID == rn.session.ID {
				s.countWS("inbound", protocol.TypeClientControl)
				_, _ = s.sessions.Cancel(rn.session.ID)
			}
		}
	}()

	<-runDone
	close(outbound)
	<-writerDone
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
	_ = conn.Close()
	<-readDone
	s.metrics.Event("ws_disconnected")
}

func (s *Server) countWS(direction string, t protocol.MessageType) {
	if s.metrics == nil || t == "" {
		return
	}
	s.metrics.WSMessages.WithLabelValues(direction, string(t)).Inc()
}

func messageTypeOf(v any) protocol.MessageType {
	switch m := v.(type) {
	case protocol.SessionStarted:
		return m.Type
	case protocol.Progress:
		return m.Type
	case protocol.ErrorEvent:
		return m.Type
	case artifactEvent:
		return m.Type
	default:
		return ""
	}
}
