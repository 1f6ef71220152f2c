package game

import (
	"fmt"
	"strings"
)

// Default board dimensions used when a scenario does not set its own.
const (
	defaultGridWidth  = 12
	defaultGridHeight = 8
	defaultTileSize   = 48 // px, only meaningful to renderers
)

// GridPos is an integer cell coordinate. Y grows upward.
type GridPos struct {
	X int `json:"x" mapstructure:"x"`
	Y int `json:"y" mapstructure:"y"`
}

// Offset is a displacement between two cells.
type Offset struct {
	DX int
	DY int
}

// Add translates p by o. No wraparound, no bounds check.
func (p GridPos) Add(o Offset) GridPos {
	return GridPos{X: p.X + o.DX, Y: p.Y + o.DY}
}

func (p GridPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is one of the four grid directions.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
	directionCount // sentinel
)

// Directions lists all four directions in declaration order.
var Directions = [directionCount]Direction{DirUp, DirDown, DirLeft, DirRight}

var directionOffsets = [directionCount]Offset{
	DirUp:    {DX: 0, DY: 1},
	DirDown:  {DX: 0, DY: -1},
	DirLeft:  {DX: -1, DY: 0},
	DirRight: {DX: 1, DY: 0},
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return d
	}
}

// Offset returns the unit displacement for d.
func (d Direction) Offset() Offset {
	if !d.Valid() {
		return Offset{}
	}
	return directionOffsets[d]
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= DirUp && d < directionCount
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection accepts the String form of a direction, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u", "north":
		return DirUp, nil
	case "down", "d", "south":
		return DirDown, nil
	case "left", "l", "west":
		return DirLeft, nil
	case "right", "r", "east":
		return DirRight, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Grid is the fixed playfield. TileSize is a pixel hint for renderers.
type Grid struct {
	Width    int
	Height   int
	TileSize int
}

// NewGrid returns a grid of w×h cells. Non-positive sizes fall back to defaults.
func NewGrid(w, h, tileSize int) Grid {
	if w <= 0 {
		w = defaultGridWidth
	}
	if h <= 0 {
		h = defaultGridHeight
	}
	if tileSize <= 0 {
		tileSize = defaultTileSize
	}
	return Grid{Width: w, Height: h, TileSize: tileSize}
}

// InBounds reports whether p lies inside [0,Width) × [0,Height).
func (g Grid) InBounds(p GridPos) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// index flattens an in-bounds cell into the occupancy slice.
func (g Grid) index(p GridPos) int {
	return p.Y*g.Width + p.X
}

// Cells returns the number of cells on the grid.
func (g Grid) Cells() int {
	return g.Width * g.Height
}
