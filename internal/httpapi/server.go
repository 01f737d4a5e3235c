package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/artifact"
	"github.com/ent0n29/lenstalk/internal/assembly"
	"github.com/ent0n29/lenstalk/internal/config"
	"github.com/ent0n29/lenstalk/internal/observability"
	"github.com/ent0n29/lenstalk/internal/pipeline"
	"github.com/ent0n29/lenstalk/internal/session"
	"github.com/ent0n29/lenstalk/internal/usage"
)

// Interpreter runs one pipeline session.
type Interpreter interface {
	Run(ctx context.Context, req pipeline.Request, sink pipeline.Sink) (pipeline.Artifact, error)
}

type Deps struct {
	Sessions    *session.Manager
	Interpreter Interpreter
	// Speech backs the voice preview endpoint.
	Speech  assembly.Speaker
	Archive *artifact.Archive
	Usage   usage.Counter
	Metrics *observability.Metrics
	// MetricsHandler defaults to the process-wide Prometheus handler.
	MetricsHandler http.Handler
	// Providers reports which upstream services are configured, for /readyz.
	Providers map[string]bool
}

type Server struct {
	cfg            config.Config
	sessions       *session.Manager
	interpreter    Interpreter
	speech         assembly.Speaker
	archive        *artifact.Archive
	usage          usage.Counter
	metrics        *observability.Metrics
	metricsHandler http.Handler
	providers      map[string]bool
	logger         zerolog.Logger
	upgrader       websocket.Upgrader
}

func New(cfg config.Config, deps Deps, logger zerolog.Logger) *Server {
	if deps.Usage == nil {
		deps.Usage = usage.Unlimited{}
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = observability.MetricsHandler()
	}
	return &Server{
		cfg:            cfg,
		sessions:       deps.Sessions,
		interpreter:    deps.Interpreter,
		speech:         deps.Speech,
		archive:        deps.Archive,
		usage:          deps.Usage,
		metrics:        deps.Metrics,
		metricsHandler: deps.MetricsHandler,
		providers:      deps.Providers,
		logger:         logger.With().Str("component", "httpapi").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metricsHandler.ServeHTTP(w, r)
	})

	r.Get("/v1/setup/status", s.handleSetupStatus)
	r.Get("/v1/personas", s.handleListPersonas)
	r.Post("/v1/interpret", s.handleInterpret)
	r.Get("/v1/interpret/ws", s.handleInterpretWS)
	r.Get("/v1/sessions/{id}", s.handleGetSession)
	r.Post("/v1/sessions/{id}/cancel", s.handleCancelSession)
	r.Get("/v1/artifacts", s.handleListArtifacts)
	r.Get("/v1/artifacts/{id}", s.handleGetArtifact)
	r.Get("/v1/artifacts/{id}/audio", s.handleArtifactAudio)
	r.Post("/v1/voice/preview", s.handleVoicePreview)
	r.Get("/v1/usage", s.handleUsage)
	r.Get("/v1/stats/stages", s.handleStageStats)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	state := "ready"
	if s.interpreter == nil {
		status = http.StatusServiceUnavailable
		state = "unavailable"
	}
	respondJSON(w, status, map[string]any{
		"status":    state,
		"providers": s.providers,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	sess, err := s.sessions.Cancel(id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	case errors.Is(err, session.ErrNotRunning):
		respondError(w, http.StatusConflict, "session_not_running", err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	s.metrics.Event("cancel_requested")
	respondJSON(w, http.StatusAccepted, sess)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	guestID := usageScope(r.URL.Query().Get("guest_id"), r.RemoteAddr)
	st, err := s.usage.Peek(r.Context(), guestID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "usage_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"guest_id":  guestID,
		"used":      st.Used,
		"limit":     st.Limit,
		"remaining": st.Remaining(),
		"reset_at":  st.ResetAt,
	})
}

func (s *Server) handleStageStats(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"generated_at": "",
			"window_size":  0,
			"stages":       []any{},
		})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.Stages.Snapshot())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
