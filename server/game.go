package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/input"
	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const (
	DefaultTickRate      = 60 // physics ticks per second
	DefaultBroadcastRate = 30 // state broadcasts per second
)

// Broadcaster is anything a game can push messages to
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// GameConfig sets the loop rates and the obstacle seed
type GameConfig struct {
	TickRate      int
	BroadcastRate int
	Seed          uint64 // 0 picks a time-based seed per run
}

// BroadcastEvery returns how many ticks pass between state frames
func (c GameConfig) BroadcastEvery() uint64 {
	if c.BroadcastRate <= 0 || c.BroadcastRate >= c.TickRate {
		return 1
	}
	return uint64(c.TickRate / c.BroadcastRate)
}

// TickDuration returns the wall time of one tick
func (c GameConfig) TickDuration() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(c.TickRate)
}

// Game runs one simulation session for a desktop renderer and an optional
// paired phone controller
type Game struct {
	mu         sync.Mutex
	cfg        GameConfig
	sim        *sim.Session
	log        zerolog.Logger
	metrics    *Metrics
	desktop    Broadcaster
	controller Broadcaster
	keys       sim.Intent // desktop intent
	pad        sim.Intent // controller intent
	events     []sim.Event
	changes    sim.Changes
	tick       uint64
	running    bool
	ended      bool
	stop       chan struct{}
	done       chan struct{}
}

// NewGame creates a Game for mode. The loop does not run until Start.
func NewGame(cfg GameConfig, mode sim.Mode, log zerolog.Logger, metrics *Metrics) *Game {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Game{
		cfg:     cfg,
		sim:     sim.NewSession(sim.DefaultConfig(mode), sim.NewRNG(seed), log),
		log:     log,
		metrics: metrics,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start attaches the desktop renderer and runs the loop in the background
func (g *Game) Start(desktop Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return
	}
	g.desktop = desktop
	g.running = true
	go g.loop()
}

// Run runs the game loop in the calling goroutine until Stop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()
	g.loop()
}

func (g *Game) loop() {
	defer close(g.done)

	ticker := time.NewTicker(g.cfg.TickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop and waits for it to exit
func (g *Game) Stop() {
	g.mu.Lock()
	g.ended = true
	running := g.running
	if running {
		g.running = false
		close(g.stop)
	}
	g.mu.Unlock()
	if running {
		<-g.done
	}
}

// HandleInput stores the latest intent of the desktop or the controller.
// The tick uses both, OR-ed together.
func (g *Game) HandleInput(in sim.Intent, fromController bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if fromController {
		g.pad = in
	} else {
		g.keys = in
	}
}

// SetController attaches a phone controller, replacing any previous one
func (g *Game) SetController(c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controller = c
	g.pad = sim.Intent{}
	if g.desktop != nil {
		g.desktop.SendJSON(Envelope{T: MsgCtrlOn})
	}
}

// RemoveController detaches c if it is the current controller
func (g *Game) RemoveController(c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.controller != c {
		return
	}
	g.controller = nil
	g.pad = sim.Intent{}
	if g.desktop != nil {
		g.desktop.SendJSON(Envelope{T: MsgCtrlOff})
	}
}

// Stats returns the run summary so far
func (g *Game) Stats() sim.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.Stats()
}

// Mode returns the run's tuning preset
func (g *Game) Mode() sim.Mode {
	return g.sim.Mode()
}

// End notifies both ends that the run is over
func (g *Game) End(msg EndedMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	env := Envelope{T: MsgEnded, Data: msg}
	if g.desktop != nil {
		g.desktop.SendJSON(env)
	}
	if g.controller != nil {
		g.controller.SendJSON(env)
	}
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	dt := 1.0 / float64(g.cfg.TickRate)
	g.tick++

	res := g.sim.Tick(input.Merge(g.keys, g.pad), dt)
	g.events = append(g.events, res.Events...)
	g.changes.Added = append(g.changes.Added, res.Changes.Added...)
	g.changes.Removed = append(g.changes.Removed, res.Changes.Removed...)

	ctx := context.Background()
	g.metrics.RecordTick(ctx, time.Since(start), g.sim.Mode().String())

	if g.tick%g.cfg.BroadcastEvery() == 0 {
		g.broadcastState(ctx, res.Snapshot)
	}
}

// broadcastState sends the latest frame and the batched events
func (g *Game) broadcastState(ctx context.Context, snap sim.Snapshot) {
	if g.desktop == nil {
		return
	}
	data, err := EncodeFrame(Frame{Snapshot: snap, Changes: g.changes})
	if err != nil {
		g.log.Error().Err(err).Msg("encode frame")
		return
	}
	g.changes = sim.Changes{}
	g.desktop.SendBinary(data)
	g.metrics.RecordSnapshot(ctx, len(data))

	if len(g.events) > 0 {
		g.desktop.SendJSON(Envelope{T: MsgEvents, Data: g.events})
		g.events = nil
	}
}
