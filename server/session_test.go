package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

var testGameConfig = GameConfig{TickRate: 60, BroadcastRate: 30, Seed: 9}

func TestCreateSession(t *testing.T) {
	sm := NewSessionManager(testGameConfig, 2, nil, zerolog.Nop())

	a := sm.CreateSession(sim.ModeArcade)
	require.NotNil(t, a)
	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.Equal(t, sim.ModeArcade, a.Game.Mode())

	b := sm.CreateSession(sim.ModeClassic)
	require.NotNil(t, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, sim.ModeClassic, b.Game.Mode())

	assert.Nil(t, sm.CreateSession(sim.ModeArcade), "limit reached")
	assert.Equal(t, 2, sm.Count())
	assert.Same(t, a, sm.GetSession(a.ID))
	assert.Nil(t, sm.GetSession("missing"))
}

func TestDefaultMaxSessions(t *testing.T) {
	sm := NewSessionManager(testGameConfig, 0, nil, zerolog.Nop())
	assert.Equal(t, defaultMaxSessions, sm.maxSessions)
}

func TestEndSessionRecordsRun(t *testing.T) {
	db := openTestDB(t)
	tel := NewTelemetry(db, zerolog.Nop())
	sm := NewSessionManager(testGameConfig, 10, tel, zerolog.Nop())

	sess := sm.CreateSession(sim.ModeClassic)
	desktop := &mockBroadcaster{}
	sess.Game.Start(desktop)
	assert.Eventually(t, func() bool { return desktop.frames() > 0 }, 2*time.Second, 5*time.Millisecond)

	sm.EndSession(sess.ID)
	sm.EndSession(sess.ID) // no-op
	assert.Zero(t, sm.Count())

	types := desktop.types()
	require.NotEmpty(t, types)
	assert.Equal(t, MsgEnded, types[len(types)-1])

	tel.Stop()
	entries, err := db.GetLeaderboard("classic", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sess.ID, entries[0].SessionID)
	assert.Greater(t, entries[0].Duration, 0.0)
}

func TestEndAll(t *testing.T) {
	sm := NewSessionManager(testGameConfig, 10, nil, zerolog.Nop())
	for i := 0; i < 3; i++ {
		sess := sm.CreateSession(sim.ModeArcade)
		sess.Game.Start(&mockBroadcaster{})
	}
	sm.EndAll()
	assert.Zero(t, sm.Count())
}
