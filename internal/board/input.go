package board

import (
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

// aimMode decides what an arrow key submits.
type aimMode int

const (
	aimMove aimMode = iota
	aimAttack
	aimHeal
	aimRepair
)

func (m aimMode) String() string {
	switch m {
	case aimAttack:
		return "ATTACK"
	case aimHeal:
		return "HEAL"
	case aimRepair:
		return "REPAIR"
	default:
		return "MOVE"
	}
}

// requestFor turns an arrow press into a request for the current mode.
func requestFor(mode aimMode, d game.Direction, slot game.WeaponSlot) game.ActionRequest {
	switch mode {
	case aimAttack:
		return game.AttackRequest(d, slot)
	case aimHeal:
		return game.HealRequest(d)
	case aimRepair:
		return game.RepairRequest(d)
	default:
		return game.MoveRequest(d)
	}
}

var arrowKeys = map[ebiten.Key]game.Direction{
	ebiten.KeyArrowUp:    game.DirUp,
	ebiten.KeyArrowDown:  game.DirDown,
	ebiten.KeyArrowLeft:  game.DirLeft,
	ebiten.KeyArrowRight: game.DirRight,
}

var modeKeys = map[ebiten.Key]aimMode{
	ebiten.KeyM: aimMove,
	ebiten.KeyF: aimAttack,
	ebiten.KeyH: aimHeal,
	ebiten.KeyR: aimRepair,
}

var slotKeys = map[ebiten.Key]game.WeaponSlot{
	ebiten.Key1: game.SlotPrimary,
	ebiten.Key2: game.SlotSecondary,
	ebiten.Key3: game.SlotTertiary,
}

var speedSteps = []float64{0.5, 1, 2, 4}

// copyWindow is how many recent ticks C copies; Shift+C copies everything.
const copyWindow = 100

func copyText(sl *game.SimLog, tick int, full bool) string {
	if full {
		return sl.Format()
	}
	from := tick - copyWindow + 1
	if from < 1 {
		from = 1
	}
	return sl.FormatRange(from, tick)
}

// pressed reports an edge-triggered key press.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes keypresses (edge-triggered) for the selected unit.
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	if g.pressed(cur, ebiten.KeyTab) {
		g.selectNext()
	}
	for k, mode := range modeKeys {
		if g.pressed(cur, k) {
			g.mode = mode
		}
	}
	for k, slot := range slotKeys {
		if g.pressed(cur, k) {
			g.slot = slot
		}
	}
	for k, d := range arrowKeys {
		if g.pressed(cur, k) {
			g.submit(requestFor(g.mode, d, g.slot))
			g.mode = aimMove
		}
	}
	if g.pressed(cur, ebiten.KeyD) {
		g.submit(game.DodgeRequest())
	}
	if g.pressed(cur, ebiten.KeyW) {
		g.submit(game.WaitRequest())
	}

	if g.pressed(cur, ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.pressed(cur, ebiten.KeyComma) && g.speedIdx > 0 {
		g.speedIdx--
		g.driver.SetSpeed(speedSteps[g.speedIdx])
	}
	if g.pressed(cur, ebiten.KeyPeriod) && g.speedIdx < len(speedSteps)-1 {
		g.speedIdx++
		g.driver.SetSpeed(speedSteps[g.speedIdx])
	}

	if g.pressed(cur, ebiten.KeyC) {
		full := ebiten.IsKeyPressed(ebiten.KeyShift)
		if err := clipboard.WriteAll(copyText(g.driver.SimLog(), g.world.Tick(), full)); err != nil {
			g.status = "copy failed: " + err.Error()
			g.log.Warn().Err(err).Msg("clipboard write failed")
		} else {
			g.status = "battle log copied"
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		if p, ok := g.layout.cellAt(mx, my); ok {
			if u, ok := g.world.UnitAt(p); ok && u.Controller() == game.ControllerPlayer {
				g.selected = u.ID()
			}
		}
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	g.prevKeys = cur
}

// submit queues req for the selected unit; rejections go to the status line.
func (g *Game) submit(req game.ActionRequest) {
	u, ok := g.selectedUnit()
	if !ok {
		g.status = "no unit selected"
		return
	}
	if err := g.world.Submit(u.ID(), req); err != nil {
		g.status = err.Error()
		return
	}
	g.status = u.Label() + ": " + req.String()
}
