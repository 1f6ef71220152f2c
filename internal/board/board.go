// Package board is the desktop front-end: it drives a battle from ebiten's
// game loop and renders the grid, the units and a battle log.
package board

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

// Game implements ebiten.Game.
type Game struct {
	driver *game.Driver
	world  *game.World
	layout boardLayout
	events *EventLog
	face   text.Face
	log    zerolog.Logger

	selected game.UnitID
	mode     aimMode
	slot     game.WeaponSlot
	status   string

	paused        bool
	speedIdx      int
	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the operational logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Game) {
		g.log = l
	}
}

// New wraps d in an ebiten game. The first player unit starts selected.
func New(d *game.Driver, opts ...Option) *Game {
	g := &Game{
		driver:   d,
		world:    d.World(),
		layout:   newBoardLayout(d.World().Grid()),
		events:   NewEventLog(),
		face:     text.NewGoXFace(basicfont.Face7x13),
		log:      zerolog.Nop(),
		selected: game.NoUnit,
		speedIdx: 1,
		prevKeys: make(map[ebiten.Key]bool),
	}
	for _, o := range opts {
		o(g)
	}
	d.SetSpeed(speedSteps[g.speedIdx])
	d.Observe(g.events.AddReport)
	g.selectNext()
	return g
}

// Update handles input every frame and feeds one frame of time to the driver.
func (g *Game) Update() error {
	g.handleInput()

	if g.paused || g.finished() {
		return nil
	}
	g.driver.Advance(time.Second / time.Duration(ebiten.TPS()))
	if _, ok := g.selectedUnit(); !ok {
		g.selectNext()
	}
	return nil
}

func (g *Game) finished() bool {
	return game.DetermineBattleOutcome(g.world).Outcome != game.OutcomeInconclusive
}

// selectedUnit returns the selected unit if it is still a living player unit.
func (g *Game) selectedUnit() (*game.Unit, bool) {
	u, ok := g.world.Unit(g.selected)
	if !ok || !u.Alive() || u.Controller() != game.ControllerPlayer {
		return nil, false
	}
	return u, true
}

// selectNext cycles to the next living player unit in handle order.
func (g *Game) selectNext() {
	g.selected = nextPlayerUnit(g.world.Living(), g.selected)
}

func nextPlayerUnit(living []*game.Unit, current game.UnitID) game.UnitID {
	first := game.NoUnit
	for _, u := range living {
		if u.Controller() != game.ControllerPlayer {
			continue
		}
		if first == game.NoUnit {
			first = u.ID()
		}
		if u.ID() > current {
			return u.ID()
		}
	}
	return first
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 18, G: 24, B: 18, A: 255})
	g.drawBoard(screen)
	for _, v := range g.world.Views() {
		g.drawUnit(screen, v)
	}
	g.drawHUD(screen)
	w, h := g.layout.screenSize()
	g.events.Draw(screen, g.face, w-logPanelWidth, h)
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	bw, bh := g.layout.boardSize()
	ox, oy := float32(g.layout.offX), float32(g.layout.offY)
	vector.FillRect(screen, ox, oy, float32(bw), float32(bh), color.RGBA{R: 38, G: 52, B: 36, A: 255}, false)

	tile := g.layout.tile()
	gridCol := color.RGBA{R: 60, G: 80, B: 58, A: 255}
	for x := 0; x <= bw; x += tile {
		vector.StrokeLine(screen, ox+float32(x), oy, ox+float32(x), oy+float32(bh), 1.0, gridCol, false)
	}
	for y := 0; y <= bh; y += tile {
		vector.StrokeLine(screen, ox, oy+float32(y), ox+float32(bw), oy+float32(y), 1.0, gridCol, false)
	}
	vector.StrokeRect(screen, ox-1, oy-1, float32(bw)+2, float32(bh)+2, 2.0, color.RGBA{R: 90, G: 120, B: 90, A: 255}, false)
}

func (g *Game) drawUnit(screen *ebiten.Image, v game.UnitView) {
	cx, cy := g.layout.cellCenter(v.Pos)
	r := g.layout.unitRadius(v.Scale)
	col := factionColor(v.Faction)

	if v.Evading {
		vector.StrokeCircle(screen, cx, cy, r+3, 1.5, color.RGBA{R: 230, G: 230, B: 120, A: 200}, true)
	}
	vector.FillCircle(screen, cx, cy, r, col, true)
	if v.ID == g.selected {
		vector.StrokeCircle(screen, cx, cy, r+1, 2.0, color.White, true)
	}

	// HP and energy bars along the bottom of the cell.
	x, y := g.layout.cellOrigin(v.Pos)
	tile := float32(g.layout.tile())
	drawBar(screen, float32(x)+2, float32(y)+tile-8, tile-4, v.HP, color.RGBA{R: 90, G: 200, B: 90, A: 255})
	drawBar(screen, float32(x)+2, float32(y)+tile-4, tile-4, v.Energy, color.RGBA{R: 90, G: 160, B: 230, A: 255})

	drawText(screen, g.face, v.Label, x+3, y+1, color.White)
}

func drawBar(screen *ebiten.Image, x, y, w float32, p game.Pair, c color.Color) {
	vector.FillRect(screen, x, y, w, 3, color.RGBA{R: 20, G: 20, B: 20, A: 200}, false)
	if p.Max <= 0 {
		return
	}
	vector.FillRect(screen, x, y, w*float32(p.Current)/float32(p.Max), 3, c, false)
}

// drawHUD renders the selected unit and key hints under the board.
func (g *Game) drawHUD(screen *ebiten.Image) {
	_, bh := g.layout.boardSize()
	x := borderWidth
	y := borderWidth + bh + 6

	speed := fmt.Sprintf("%.1fx", speedSteps[g.speedIdx])
	if g.paused {
		speed = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("T=%d  %s  P=pause  ,/. speed  C/Shift+C=copy log", g.world.Tick(), speed),
	}
	if u, ok := g.selectedUnit(); ok {
		wpn := "none"
		if w := u.Weapon(g.slot); w != nil {
			wpn = w.String()
		}
		lines = append(lines,
			fmt.Sprintf("%s %s  hp %s  ap %s  en %s", u.Label(), u.Pos(), u.HP, u.Armor, u.Energy),
			fmt.Sprintf("mode %s  slot %s: %s", g.mode, g.slot, wpn),
			"arrows=act  F/H/R/M=mode  1-3=slot  D=dodge  W=wait  Tab=next",
		)
	}
	if out := game.DetermineBattleOutcome(g.world); out.Outcome != game.OutcomeInconclusive {
		lines = append(lines, "BATTLE OVER: "+out.Description)
	} else if g.status != "" {
		lines = append(lines, g.status)
	}
	for i, l := range lines {
		drawText(screen, g.face, l, x, y+i*15, color.RGBA{R: 210, G: 220, B: 210, A: 255})
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.layout.screenSize()
}

// ScreenSize is the window size the game wants.
func (g *Game) ScreenSize() (int, int) {
	return g.layout.screenSize()
}
