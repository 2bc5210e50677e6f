package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const (
	hudRows     = 1
	carFromBase = 4   // rows between the player car and the bottom edge
	unitsPerRow = 2.0 // world z units per terminal row
	maxColScale = 2.0 // terminal columns per world x unit
)

var (
	styleRoad     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(90, 40, 140))
	styleEdge     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 0, 200))
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 255, 255)).Bold(true)
	styleBoosted  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 140, 0)).Bold(true)
	styleTraffic  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 60, 90))
	styleOncoming = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 200, 60))
	styleReward   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 215, 0)).Bold(true)
	styleCone     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 120, 0))
	styleAmmo     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(120, 255, 120)).Bold(true)
	styleShot     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 255, 255))
	styleMissile  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(40, 0, 60))
)

// view maps world coordinates onto the terminal: x across, z up the
// screen with the player car fixed near the bottom
type view struct {
	width, height int
	centerCol     int
	carRow        int
	colScale      float64
}

func newView(width, height int) view {
	scale := float64(width-2) / (2*sim.TrackHalfWidth + 2)
	scale = math.Max(0.5, math.Min(maxColScale, scale))
	carRow := height - carFromBase
	if carRow <= hudRows {
		carRow = height - 1
	}
	return view{
		width:     width,
		height:    height,
		centerCol: width / 2,
		carRow:    carRow,
		colScale:  scale,
	}
}

// project returns the cell for world (x, z) relative to the car at carZ
func (v view) project(x, z, carZ float64) (col, row int, ok bool) {
	col = v.centerCol + int(math.Round(x*v.colScale))
	row = v.carRow + int(math.Round((z-carZ)/unitsPerRow))
	ok = col >= 0 && col < v.width && row >= hudRows && row < v.height
	return col, row, ok
}

// glyph is how one obstacle kind is drawn
type glyph struct {
	r     rune
	style tcell.Style
}

// glyphRegistry resolves obstacle state to a glyph. Cars are keyed by
// type and lane, e.g. "car/left".
type glyphRegistry map[string]glyph

func defaultGlyphs() glyphRegistry {
	return glyphRegistry{
		"car/" + sim.LaneLeft.String():      {'v', styleOncoming},
		"car/" + sim.LaneRight.String():     {'A', styleTraffic},
		sim.ObstacleReward.String():         {'$', styleReward},
		sim.ObstacleCone.String():           {'^', styleCone},
		sim.ObstacleRocketLauncher.String(): {'L', styleAmmo},
		sim.ObstacleTripleRocket.String():   {'T', styleAmmo},
	}
}

func glyphKey(o sim.ObstacleState) string {
	if o.Lane != "" {
		return o.Type + "/" + o.Lane
	}
	return o.Type
}

// lookup returns the glyph for o, or false for an unregistered kind
func (g glyphRegistry) lookup(o sim.ObstacleState) (glyph, bool) {
	gl, ok := g[glyphKey(o)]
	return gl, ok
}

// hudText is the status line
func hudText(h sim.HUD, mode sim.Mode, paused bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, " SPD %3d%%  SCORE %6d  MSL %2d", h.SpeedPercent, h.Score, h.Missiles)
	if h.Boosted {
		fmt.Fprintf(&b, "  BOOST %.1fs", h.BoostRemaining)
	}
	if h.SpreadActive {
		fmt.Fprintf(&b, "  SPREAD %.1fs", h.SpreadRemaining)
	}
	if h.TripleActive {
		fmt.Fprintf(&b, "  TRIPLE %.1fs", h.TripleRemaining)
	}
	fmt.Fprintf(&b, "  [%s]", mode)
	if paused {
		b.WriteString("  PAUSED")
	}
	return b.String()
}

func drawText(s tcell.Screen, col, row int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(col, row, r, nil, style)
		col++
	}
}

// renderer draws snapshots onto a screen
type renderer struct {
	screen tcell.Screen
	glyphs glyphRegistry
	log    zerolog.Logger
	missed map[string]bool // kinds already reported as missing
}

func newRenderer(screen tcell.Screen, glyphs glyphRegistry, log zerolog.Logger) *renderer {
	return &renderer{screen: screen, glyphs: glyphs, log: log, missed: make(map[string]bool)}
}

// draw renders one snapshot
func (rd *renderer) draw(snap sim.Snapshot, mode sim.Mode, paused bool) {
	s := rd.screen
	s.Clear()
	w, h := s.Size()
	v := newView(w, h)
	carZ := snap.Vehicle.Z

	// Road edges and the center line scroll with distance
	for row := hudRows; row < h; row++ {
		z := carZ + float64(row-v.carRow)*unitsPerRow
		for _, edge := range []float64{-sim.TrackHalfWidth, sim.TrackHalfWidth} {
			if col, _, ok := v.project(edge, z, carZ); ok {
				s.SetContent(col, row, '|', nil, styleEdge)
			}
		}
		if int(math.Floor(z/unitsPerRow))%3 == 0 {
			if col, _, ok := v.project(0, z, carZ); ok {
				s.SetContent(col, row, ':', nil, styleRoad)
			}
		}
	}

	for _, o := range snap.Obstacles {
		col, row, ok := v.project(o.X, o.Z, carZ)
		if !ok {
			continue
		}
		gl, found := rd.glyphs.lookup(o)
		if !found {
			if key := glyphKey(o); !rd.missed[key] {
				rd.missed[key] = true
				rd.log.Debug().Str("kind", key).Msg("no glyph, obstacle not drawn")
			}
			continue
		}
		s.SetContent(col, row, gl.r, nil, gl.style)
	}
	for _, p := range snap.Projectiles {
		if col, row, ok := v.project(p.Position.X, p.Position.Z, carZ); ok {
			s.SetContent(col, row, '\'', nil, styleShot)
		}
	}
	for _, m := range snap.Missiles {
		if col, row, ok := v.project(m.Position.X, m.Position.Z, carZ); ok {
			r := '*'
			if m.Position.Y > 4 {
				r = 'o'
			}
			s.SetContent(col, row, r, nil, styleMissile)
		}
	}

	player := stylePlayer
	if snap.HUD.Boosted {
		player = styleBoosted
	}
	if col, row, ok := v.project(snap.Vehicle.X, carZ, carZ); ok {
		s.SetContent(col, row, '@', nil, player)
	}

	hud := hudText(snap.HUD, mode, paused)
	for col := 0; col < w; col++ {
		s.SetContent(col, 0, ' ', nil, styleHUD)
	}
	drawText(s, 0, 0, hud, styleHUD)
	s.Show()
}
