// Package session tracks running pipeline sessions so clients can poll their
// progress or cancel them. Finished sessions are kept for a retention period
// and then evicted by the janitor.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/lenstalk/internal/protocol"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrNotRunning = errors.New("session is not running")
)

type entry struct {
	Session
	cancel context.CancelFunc
}

type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	retention time.Duration
	onExpire  func(*Session)
	now       func() time.Time
}

// NewManager keeps finished sessions for retention before eviction.
func NewManager(retention time.Duration) *Manager {
	if retention <= 0 {
		retention = 10 * time.Minute
	}
	return &Manager{
		sessions:  make(map[string]*entry),
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create registers a running session. cancel is invoked by Cancel.
func (m *Manager) Create(req CreateRequest, cancel context.CancelFunc) *Session {
	now := m.now()
	e := &entry{
		Session: Session{
			ID:         uuid.NewString(),
			GuestID:    req.GuestID,
			Status:     StatusRunning,
			Mode:       req.Mode,
			Persona1:   req.Persona1,
			Persona2:   req.Persona2,
			Language:   req.Language,
			TurnsTotal: req.TurnsTotal,
			StartedAt:  now,
			UpdatedAt:  now,
		},
		cancel: cancel,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[e.ID] = e
	return e.snapshot()
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return e.snapshot(), nil
}

// Progress folds a pipeline event into the session. Events for finished
// sessions are ignored.
func (m *Manager) Progress(ev protocol.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[ev.SessionID]
	if !ok {
		return ErrNotFound
	}
	if e.Status.Terminal() {
		return nil
	}
	e.Stage = ev.Stage
	switch ev.Stage {
	case protocol.StageTurnGenerated:
		e.TurnsDone = ev.Index
	case protocol.StageSegmentSynthesized:
		e.Segments++
	}
	e.UpdatedAt = m.now()
	return nil
}

func (m *Manager) Complete(sessionID, artifactID string) (*Session, error) {
	return m.finish(sessionID, StatusCompleted, artifactID, "")
}

// Fail marks the session failed, or cancelled when err is a context error.
func (m *Manager) Fail(sessionID string, err error) (*Session, error) {
	status := StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = StatusCancelled
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return m.finish(sessionID, status, "", msg)
}

// Cancel stops a running session. The pipeline goroutine reports the final
// state through Fail.
func (m *Manager) Cancel(sessionID string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if e.Status.Terminal() {
		snap := e.snapshot()
		m.mu.Unlock()
		return snap, ErrNotRunning
	}
	cancel := e.cancel
	e.UpdatedAt = m.now()
	snap := e.snapshot()
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return snap, nil
}

func (m *Manager) finish(sessionID string, status Status, artifactID, errMsg string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if e.Status.Terminal() {
		return e.snapshot(), ErrNotRunning
	}
	e.Status = status
	e.ArtifactID = artifactID
	e.Error = errMsg
	e.UpdatedAt = m.now()
	e.cancel = nil
	return e.snapshot(), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireFinished()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.sessions {
		if e.Status == StatusRunning {
			count++
		}
	}
	return count
}

func (m *Manager) expireFinished() {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for id, e := range m.sessions {
		if !e.Status.Terminal() {
			continue
		}
		if now.Sub(e.UpdatedAt) < m.retention {
			continue
		}
		expired = append(expired, e.snapshot())
		delete(m.sessions, id)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func (e *entry) snapshot() *Session {
	c := e.Session
	return &c
}
