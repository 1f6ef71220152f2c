package board

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

// borderWidth is the pixel gap between the window edge and the board.
const borderWidth = 24

// hudHeight is the strip under the board reserved for the HUD.
const hudHeight = 96

// boardLayout maps grid cells to screen pixels. Grid y grows upward, screen
// y grows downward, so rows are flipped.
type boardLayout struct {
	grid game.Grid
	offX int
	offY int
}

func newBoardLayout(g game.Grid) boardLayout {
	return boardLayout{grid: g, offX: borderWidth, offY: borderWidth}
}

func (l boardLayout) tile() int { return l.grid.TileSize }

// boardSize is the pixel size of the board itself.
func (l boardLayout) boardSize() (int, int) {
	return l.grid.Width * l.tile(), l.grid.Height * l.tile()
}

// screenSize is the full window: border, board, border, HUD and log panel.
func (l boardLayout) screenSize() (int, int) {
	bw, bh := l.boardSize()
	return borderWidth + bw + borderWidth + logPanelWidth, borderWidth + bh + hudHeight
}

// cellOrigin returns the top-left pixel of cell p.
func (l boardLayout) cellOrigin(p game.GridPos) (int, int) {
	return l.offX + p.X*l.tile(), l.offY + (l.grid.Height-1-p.Y)*l.tile()
}

// cellCenter returns the center pixel of cell p.
func (l boardLayout) cellCenter(p game.GridPos) (float32, float32) {
	x, y := l.cellOrigin(p)
	half := float32(l.tile()) / 2
	return float32(x) + half, float32(y) + half
}

// cellAt is the inverse of cellOrigin. ok is false outside the board.
func (l boardLayout) cellAt(px, py int) (game.GridPos, bool) {
	if px < l.offX || py < l.offY {
		return game.GridPos{}, false
	}
	col := (px - l.offX) / l.tile()
	row := (py - l.offY) / l.tile()
	p := game.GridPos{X: col, Y: l.grid.Height - 1 - row}
	return p, l.grid.InBounds(p)
}

// unitRadius sizes a unit marker from its scale hint.
func (l boardLayout) unitRadius(scale float64) float32 {
	if scale <= 0 {
		scale = 1
	}
	if scale > 1.2 {
		scale = 1.2
	}
	return float32(float64(l.tile()) * 0.45 * scale)
}

var factionPalette = []color.RGBA{
	{R: 210, G: 70, B: 70, A: 255},
	{R: 70, G: 110, B: 210, A: 255},
	{R: 80, G: 180, B: 90, A: 255},
	{R: 200, G: 170, B: 60, A: 255},
}

// factionColor picks a stable color per faction id.
func factionColor(f game.FactionID) color.RGBA {
	i := int(f) - 1
	if i < 0 {
		i = -i
	}
	return factionPalette[i%len(factionPalette)]
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}
