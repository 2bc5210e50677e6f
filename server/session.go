package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const defaultMaxSessions = 100

// Session is one run, owned by the desktop connection that started it
type Session struct {
	ID      string
	Game    *Game
	Started time.Time
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	cfg         GameConfig
	telemetry   *Telemetry
	metrics     *Metrics
	log         zerolog.Logger
}

// NewSessionManager creates a new SessionManager. telemetry may be nil.
func NewSessionManager(cfg GameConfig, maxSessions int, telemetry *Telemetry, log zerolog.Logger) *SessionManager {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		cfg:         cfg,
		telemetry:   telemetry,
		log:         log,
	}
}

// SetMetrics attaches instruments to sessions created from now on
func (sm *SessionManager) SetMetrics(m *Metrics) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.metrics = m
}

// CreateSession creates a session for mode. Returns nil if limit reached.
// The game loop is not started.
func (sm *SessionManager) CreateSession(mode sim.Mode) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.maxSessions {
		return nil
	}

	id := uuid.NewString()
	log := sm.log.With().Str("session", id).Str("mode", mode.String()).Logger()
	sess := &Session{
		ID:      id,
		Game:    NewGame(sm.cfg, mode, log, sm.metrics),
		Started: time.Now(),
	}
	sm.sessions[id] = sess
	log.Info().Msg("run started")
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// EndSession stops a run, sends its summary to both ends and records it.
// Ending an unknown session is a no-op.
func (sm *SessionManager) EndSession(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if !ok {
		return
	}

	sess.Game.Stop()
	st := sess.Game.Stats()
	mode := sess.Game.Mode()
	sess.Game.End(EndedMsg{
		SID:           id,
		Score:         st.Score,
		Distance:      st.Distance,
		Duration:      st.Duration,
		CarsDestroyed: st.CarsDestroyed,
		MissilesFired: st.MissilesFired,
	})
	sm.telemetry.Record(NewRunRecord(id, mode, st))
	sm.log.Info().
		Str("session", id).
		Int("score", st.Score).
		Float64("distance", st.Distance).
		Float64("duration", st.Duration).
		Msg("run ended")
}

// EndAll ends every session, e.g. on shutdown
func (sm *SessionManager) EndAll() {
	sm.mu.RLock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.RUnlock()
	for _, id := range ids {
		sm.EndSession(id)
	}
}

// Count returns the number of active sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
