package board

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

const (
	logPanelWidth = 360
	logMaxEntries = 80
	logLineHeight = 14
)

// EventEntry is a single line in the event log.
type EventEntry struct {
	Tick    int
	Label   string
	Faction game.FactionID
	Message string
	Failed  bool
}

func (e EventEntry) String() string {
	return fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message)
}

// EventLog is a ring buffer of resolution lines rendered on-screen.
type EventLog struct {
	entries []EventEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]EventEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(e EventEntry) {
	el.entries[el.head] = e
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// AddReport logs every resolution of rep except plain waits.
func (el *EventLog) AddReport(rep game.TickReport) {
	for _, r := range rep.Resolutions {
		if r.Request.Kind == game.ActionWait && r.OK() {
			continue
		}
		msg := r.String()
		if prefix := r.Label + " "; strings.HasPrefix(msg, prefix) {
			msg = msg[len(prefix):]
		}
		el.Add(EventEntry{
			Tick:    r.Tick,
			Label:   r.Label,
			Faction: r.Faction,
			Message: msg,
			Failed:  !r.OK(),
		})
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []EventEntry {
	result := make([]EventEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Text returns the buffered lines, one per line.
func (el *EventLog) Text() string {
	var sb strings.Builder
	for _, e := range el.Recent() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Draw renders the log panel at panelX.
func (el *EventLog) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawText(screen, face, "BATTLE LOG", panelX+8, 3, color.White)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := el.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	const recent = 3
	y := 22
	for i, e := range entries {
		if i >= len(entries)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, factionColor(e.Faction), false)

		var c color.Color = color.RGBA{R: 200, G: 210, B: 200, A: 255}
		if e.Failed {
			c = color.RGBA{R: 150, G: 150, B: 150, A: 255}
		}
		drawText(screen, face, e.String(), panelX+12, y, c)
		y += logLineHeight
	}
}
