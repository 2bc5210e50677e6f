package main

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

func (m *mockBroadcaster) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.messages {
		if env, ok := msg.(Envelope); ok {
			out = append(out, env.T)
		}
	}
	return out
}

func (m *mockBroadcaster) frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.binary)
}

func newTestGame(t *testing.T) (*Game, *mockBroadcaster) {
	t.Helper()
	g := NewGame(GameConfig{TickRate: 60, BroadcastRate: 30, Seed: 7}, sim.ModeArcade, zerolog.Nop(), nil)
	desktop := &mockBroadcaster{}
	g.desktop = desktop
	return g, desktop
}

func TestBroadcastEvery(t *testing.T) {
	cases := []struct {
		tick, bcast int
		want        uint64
	}{
		{60, 30, 2},
		{60, 20, 3},
		{60, 60, 1},
		{60, 120, 1},
		{60, 0, 1},
	}
	for _, c := range cases {
		got := GameConfig{TickRate: c.tick, BroadcastRate: c.bcast}.BroadcastEvery()
		if got != c.want {
			t.Errorf("BroadcastEvery(%d, %d) = %d, want %d", c.tick, c.bcast, got, c.want)
		}
	}
}

func TestTickDuration(t *testing.T) {
	if d := (GameConfig{TickRate: 50}).TickDuration(); d != 20*time.Millisecond {
		t.Errorf("expected 20ms, got %s", d)
	}
	if d := (GameConfig{}).TickDuration(); d != time.Second/DefaultTickRate {
		t.Errorf("zero tick rate should fall back to default, got %s", d)
	}
}

func TestGameBroadcastsEveryOtherTick(t *testing.T) {
	g, desktop := newTestGame(t)

	g.update()
	if n := desktop.frames(); n != 0 {
		t.Fatalf("expected no frame after 1 tick, got %d", n)
	}
	g.update()
	if n := desktop.frames(); n != 1 {
		t.Fatalf("expected 1 frame after 2 ticks, got %d", n)
	}

	f, err := DecodeFrame(desktop.binary[0])
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if f.Snapshot.Tick != 2 {
		t.Errorf("expected snapshot tick 2, got %d", f.Snapshot.Tick)
	}
	if len(f.Snapshot.Obstacles) == 0 {
		t.Error("first frame should carry the initial obstacles")
	}
	if len(f.Changes.Added) != len(f.Snapshot.Obstacles) {
		t.Errorf("first frame should list every obstacle as added: %d vs %d",
			len(f.Changes.Added), len(f.Snapshot.Obstacles))
	}

	g.update()
	g.update()
	f2, err := DecodeFrame(desktop.binary[1])
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if len(f2.Changes.Added) != 0 {
		t.Errorf("changes should reset between frames, got %d added", len(f2.Changes.Added))
	}
}

func TestGameBatchesEvents(t *testing.T) {
	g, desktop := newTestGame(t)
	g.HandleInput(sim.Intent{Fire: true}, false)

	g.update() // shot fired, not yet broadcast
	if types := desktop.types(); len(types) != 0 {
		t.Fatalf("events should wait for the next frame, got %v", types)
	}
	g.update()

	desktop.mu.Lock()
	defer desktop.mu.Unlock()
	if len(desktop.messages) != 1 {
		t.Fatalf("expected 1 events message, got %d", len(desktop.messages))
	}
	env := desktop.messages[0].(Envelope)
	if env.T != MsgEvents {
		t.Fatalf("expected events, got %s", env.T)
	}
	events := env.Data.([]sim.Event)
	found := false
	for _, e := range events {
		if e.Kind == sim.EventShot {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a shot event, got %+v", events)
	}
}

func TestGameMergesControllerInput(t *testing.T) {
	g, _ := newTestGame(t)
	pad := &mockBroadcaster{}
	g.SetController(pad)

	g.HandleInput(sim.Intent{Accelerate: true}, true)
	g.HandleInput(sim.Intent{SteerLeft: true}, false)
	for i := 0; i < 10; i++ {
		g.update()
	}
	v := g.sim.Vehicle()
	if v.Speed <= 0 {
		t.Errorf("controller accelerate should move the car, speed=%f", v.Speed)
	}
	if v.X >= 0 {
		t.Errorf("desktop steer left should move the car left, x=%f", v.X)
	}
}

func TestGameControllerOnOff(t *testing.T) {
	g, desktop := newTestGame(t)
	pad := &mockBroadcaster{}
	other := &mockBroadcaster{}

	g.SetController(pad)
	g.HandleInput(sim.Intent{Accelerate: true}, true)

	g.RemoveController(other) // not the current controller
	g.RemoveController(pad)

	types := desktop.types()
	if len(types) != 2 || types[0] != MsgCtrlOn || types[1] != MsgCtrlOff {
		t.Fatalf("expected [ctrl_on ctrl_off], got %v", types)
	}
	if g.pad != (sim.Intent{}) {
		t.Error("removing the controller should clear its intent")
	}
}

func TestGameEndNotifiesBothEnds(t *testing.T) {
	g, desktop := newTestGame(t)
	pad := &mockBroadcaster{}
	g.SetController(pad)

	g.End(EndedMsg{SID: "s1", Score: 300})

	if types := desktop.types(); types[len(types)-1] != MsgEnded {
		t.Errorf("desktop should receive ended, got %v", types)
	}
	if types := pad.types(); len(types) != 1 || types[0] != MsgEnded {
		t.Errorf("controller should receive ended, got %v", types)
	}
}

func TestGameStartStop(t *testing.T) {
	g := NewGame(GameConfig{TickRate: 200, BroadcastRate: 100, Seed: 3}, sim.ModeClassic, zerolog.Nop(), nil)
	desktop := &mockBroadcaster{}
	g.Start(desktop)

	deadline := time.Now().Add(2 * time.Second)
	for desktop.frames() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no frame received from running game")
		}
		time.Sleep(5 * time.Millisecond)
	}
	g.Stop()

	n := desktop.frames()
	time.Sleep(30 * time.Millisecond)
	if desktop.frames() != n {
		t.Error("frames sent after Stop")
	}
	g.Stop() // second stop is a no-op
}

func TestGameStopBeforeStart(t *testing.T) {
	g := NewGame(GameConfig{TickRate: 60, BroadcastRate: 30, Seed: 3}, sim.ModeArcade, zerolog.Nop(), nil)
	g.Stop()

	desktop := &mockBroadcaster{}
	g.Start(desktop)
	time.Sleep(50 * time.Millisecond)
	if desktop.frames() != 0 {
		t.Error("a stopped game must not start")
	}
}
