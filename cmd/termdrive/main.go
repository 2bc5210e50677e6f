// Command termdrive drives the simulation in a terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/badgerhoneymoon/retrowave-racer/input"
	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

type options struct {
	mode    string
	seed    uint64
	fps     int
	hold    time.Duration
	sound   bool
	logPath string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("termdrive", pflag.ContinueOnError)
	fs.StringVar(&o.mode, "mode", "arcade", "game mode: arcade or classic")
	fs.Uint64Var(&o.seed, "seed", 0, "obstacle seed, 0 for a random seed")
	fs.IntVar(&o.fps, "fps", 60, "simulation and render rate")
	fs.DurationVar(&o.hold, "hold", 250*time.Millisecond, "how long a key counts as held after its last repeat")
	fs.BoolVar(&o.sound, "sound", true, "play sound cues")
	fs.StringVar(&o.logPath, "log", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.fps <= 0 || o.fps > 240 {
		return o, fmt.Errorf("fps must be in 1..240, got %d", o.fps)
	}
	if o.hold < 0 {
		return o, fmt.Errorf("hold must not be negative, got %s", o.hold)
	}
	return o, nil
}

// game is the terminal host: it owns the screen, samples the keyboard and
// ticks the session at a fixed rate
type game struct {
	screen tcell.Screen
	render *renderer
	sess   *sim.Session
	mode   sim.Mode
	keys   *input.Keyboard
	sounds *Sounds
	log    zerolog.Logger
	dt     float64
	period time.Duration
	paused bool
	last   sim.Snapshot
}

func (g *game) handleKey(ev *tcell.EventKey) bool {
	if isQuit(ev) {
		return false
	}
	if isPause(ev) {
		g.paused = !g.paused
		g.keys.Reset()
		g.log.Debug().Bool("paused", g.paused).Msg("pause toggled")
		return true
	}
	if name := keyName(ev); name != "" {
		g.keys.Press(name, ev.When())
	}
	return true
}

func (g *game) run() {
	ticker := time.NewTicker(g.period)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	eventChan := pollEvents(g.screen, done)

	g.last = g.sess.Snapshot()
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !g.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}

		case now := <-ticker.C:
			if !g.paused {
				res := g.sess.Tick(g.keys.Intent(now), g.dt)
				g.sounds.Play(res.Events)
				g.last = res.Snapshot
			}
			g.render.draw(g.last, g.mode, g.paused)
		}
	}
}

type poller interface {
	PollEvent() tcell.Event
}

// pollEvents pumps src into a buffered channel until src returns nil or
// done is closed
func pollEvents(src poller, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := src.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

func openLog(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	log := zerolog.New(f).With().Timestamp().Logger()
	return log, func() { f.Close() }, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	mode, err := sim.ParseMode(opts.mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, closeLog, err := openLog(opts.logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	seed := opts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	g := &game{
		screen: screen,
		render: newRenderer(screen, defaultGlyphs(), log),
		sess:   sim.NewSession(sim.DefaultConfig(mode), sim.NewRNG(seed), log),
		mode:   mode,
		keys:   input.NewKeyboard(input.DefaultBindings(), opts.hold),
		sounds: NewSounds(opts.sound, log),
		log:    log,
		dt:     1 / float64(opts.fps),
		period: time.Second / time.Duration(opts.fps),
	}
	log.Info().Str("mode", mode.String()).Uint64("seed", seed).Int("fps", opts.fps).Msg("run started")

	g.run()

	g.sounds.Close()
	screen.Fini()

	st := g.sess.Stats()
	log.Info().Int("score", st.Score).Float64("distance", st.Distance).Msg("run ended")
	fmt.Printf("score %d  distance %.0f  time %.1fs  cars destroyed %d\n",
		st.Score, st.Distance, st.Duration, st.CarsDestroyed)
}
