package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ent0n29/lenstalk/internal/debate"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/pipeline"
	"github.com/ent0n29/lenstalk/internal/protocol"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/session"
	"github.com/ent0n29/lenstalk/internal/vision"
)

// interpretResponse is the artifact as returned to clients. The audio is
// linked by AudioURL; AudioBase64 is set only when requested or when the
// artifact could not be archived.
type interpretResponse struct {
	pipeline.Artifact
	SessionID   string `json:"session_id"`
	AudioURL    string `json:"audio_url,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}

// requestError carries the HTTP status and code for a failed interpretation.
type requestError struct {
	status int
	code   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// run is a validated interpretation bound to a registered session.
type run struct {
	req pipeline.Request
	// guestID is the client-supplied id; req.GuestID is the usage scope.
	guestID string
	session *session.Session
	ctx     context.Context
	cancel  context.CancelFunc
}

// usageScope is the key counted against the guest limit. Requests without a
// guest id are counted per client address.
func usageScope(guestID, remoteAddr string) string {
	if guestID = strings.TrimSpace(guestID); guestID != "" {
		return guestID
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
	if err != nil {
		host = strings.TrimSpace(remoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	return "addr:" + host
}

// prepare validates req and registers a session whose cancel func stops the
// pipeline. The caller must call run.cancel.
func (s *Server) prepare(parent context.Context, req protocol.InterpretRequest, remoteAddr string) (*run, error) {
	if s.interpreter == nil {
		return nil, &requestError{http.StatusServiceUnavailable, "unavailable", errors.New("interpreter not configured")}
	}
	img, err := vision.DecodeImage(req.Image)
	if err != nil {
		return nil, &requestError{http.StatusBadRequest, "invalid_image", err}
	}
	p1, err := persona.Parse(req.Persona1)
	if err != nil {
		return nil, &requestError{http.StatusBadRequest, "unknown_persona", err}
	}
	var p2 persona.ID
	if strings.TrimSpace(req.Persona2) != "" {
		if p2, err = persona.Parse(req.Persona2); err != nil {
			return nil, &requestError{http.StatusBadRequest, "unknown_persona", err}
		}
	}
	lang := persona.ParseLanguage(req.Language)
	rounds := req.Rounds
	if rounds == 0 {
		rounds = s.cfg.DefaultRounds
	}
	plan, err := debate.NewSession("", p1, p2, lang, rounds)
	if err != nil {
		return nil, &requestError{http.StatusBadRequest, "invalid_request", err}
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.PipelineTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.cfg.PipelineTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	guestID := strings.TrimSpace(req.GuestID)
	sess := s.sessions.Create(session.CreateRequest{
		GuestID:    guestID,
		Mode:       string(plan.Mode()),
		Persona1:   string(p1),
		Persona2:   string(p2),
		Language:   string(lang),
		TurnsTotal: plan.ExpectedTurns(),
	}, cancel)

	return &run{
		req: pipeline.Request{
			SessionID: sess.ID,
			Image:     img,
			Persona1:  p1,
			Persona2:  p2,
			Language:  lang,
			Rounds:    rounds,
			GuestID:   usageScope(guestID, remoteAddr),
		},
		guestID: guestID,
		session: sess,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// execute runs the pipeline, archives the artifact and settles the session.
func (s *Server) execute(rn *run, sink pipeline.Sink, inlineAudio bool) (interpretResponse, error) {
	art, err := s.interpreter.Run(rn.ctx, rn.req, func(ev protocol.Progress) {
		_ = s.sessions.Progress(ev)
		if sink != nil {
			sink(ev)
		}
	})
	if err != nil {
		_, _ = s.sessions.Fail(rn.session.ID, err)
		return interpretResponse{}, classifyRunError(err)
	}

	resp := interpretResponse{Artifact: art, SessionID: rn.session.ID}
	if s.archive != nil {
		// Archive even if the client went away.
		if _, err := s.archive.Save(context.WithoutCancel(rn.ctx), art, rn.guestID); err != nil {
			s.logger.Error().Err(err).Str("artifact_id", art.ID).Msg("archive artifact failed")
			inlineAudio = true
		} else {
			resp.AudioURL = s.archive.AudioURL(art.ID)
		}
	} else {
		inlineAudio = true
	}
	if inlineAudio {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(art.Audio)
	}
	_, _ = s.sessions.Complete(rn.session.ID, art.ID)
	return resp, nil
}

func classifyRunError(err error) *requestError {
	switch {
	case errors.Is(err, reliability.ErrUsageLimitExceeded):
		return &requestError{http.StatusTooManyRequests, "usage_limit_exceeded", err}
	case errors.Is(err, debate.ErrSamePersona), errors.Is(err, debate.ErrRounds), errors.Is(err, persona.ErrUnknown):
		return &requestError{http.StatusBadRequest, "invalid_request", err}
	case errors.Is(err, context.DeadlineExceeded):
		return &requestError{http.StatusGatewayTimeout, "pipeline_timeout", err}
	case errors.Is(err, context.Canceled):
		return &requestError{http.StatusConflict, "session_cancelled", err}
	case errors.Is(err, reliability.ErrNoArtifact):
		return &requestError{http.StatusBadGateway, "no_artifact", err}
	default:
		return &requestError{http.StatusInternalServerError, "internal_error", err}
	}
}

func asRequestError(err error) *requestError {
	var re *requestError
	if errors.As(err, &re) {
		return re
	}
	return classifyRunError(err)
}

func respondRequestError(w http.ResponseWriter, err error) {
	re := asRequestError(err)
	respondError(w, re.status, re.code, re.err.Error())
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req protocol.InterpretRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	rn, err := s.prepare(r.Context(), req, r.RemoteAddr)
	if err != nil {
		respondRequestError(w, err)
		return
	}
	defer rn.cancel()

	inline := r.URL.Query().Get("inline_audio") == "1"
	resp, err := s.execute(rn, nil, inline)
	if err != nil {
		respondRequestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
