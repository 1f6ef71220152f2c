package board

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

func TestEventLog_RingBuffer(t *testing.T) {
	el := NewEventLog()
	for i := 0; i < logMaxEntries+5; i++ {
		el.Add(EventEntry{Tick: i, Label: "R0", Message: "x"})
	}
	got := el.Recent()
	if len(got) != logMaxEntries {
		t.Fatalf("expected %d entries, got %d", logMaxEntries, len(got))
	}
	if got[0].Tick != 5 {
		t.Errorf("oldest entry should be tick 5, got %d", got[0].Tick)
	}
	if got[len(got)-1].Tick != logMaxEntries+4 {
		t.Errorf("newest entry should be tick %d, got %d", logMaxEntries+4, got[len(got)-1].Tick)
	}
}

func TestEventLog_AddReportSkipsWaits(t *testing.T) {
	el := NewEventLog()
	el.AddReport(game.TickReport{
		Tick: 3,
		Resolutions: []game.Resolution{
			{Tick: 3, Label: "R0", Request: game.WaitRequest()},
			{Tick: 3, Label: "R1", Request: game.MoveRequest(game.DirUp), Pos: game.GridPos{X: 1, Y: 2}},
			{Tick: 3, Label: "B0", Request: game.MoveRequest(game.DirLeft), Err: game.ErrOutOfBounds},
		},
	})
	got := el.Recent()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(got), got)
	}
	if strings.HasPrefix(got[0].Message, "R1 ") {
		t.Errorf("label prefix not stripped: %q", got[0].Message)
	}
	if got[0].Failed || !got[1].Failed {
		t.Errorf("failure flags wrong: %+v", got)
	}
	if !strings.Contains(el.Text(), "[B0]") {
		t.Errorf("text missing B0 line:\n%s", el.Text())
	}
}

func TestLayout_RoundTrip(t *testing.T) {
	l := newBoardLayout(game.NewGrid(6, 4, 32))
	for x := 0; x < 6; x++ {
		for y := 0; y < 4; y++ {
			p := game.GridPos{X: x, Y: y}
			cx, cy := l.cellCenter(p)
			back, ok := l.cellAt(int(cx), int(cy))
			if !ok || back != p {
				t.Errorf("cell %v -> (%v,%v) -> %v ok=%v", p, cx, cy, back, ok)
			}
		}
	}
}

func TestLayout_YFlipped(t *testing.T) {
	l := newBoardLayout(game.NewGrid(6, 4, 32))
	_, top := l.cellOrigin(game.GridPos{X: 0, Y: 3})
	_, bottom := l.cellOrigin(game.GridPos{X: 0, Y: 0})
	if top >= bottom {
		t.Errorf("row 3 should be drawn above row 0: %d vs %d", top, bottom)
	}
	if _, ok := l.cellAt(0, 0); ok {
		t.Error("border pixel should not map to a cell")
	}
	bw, bh := l.boardSize()
	if _, ok := l.cellAt(borderWidth+bw+1, borderWidth+bh-1); ok {
		t.Error("pixel right of the board should not map to a cell")
	}
}

func TestRequestFor(t *testing.T) {
	cases := []struct {
		mode aimMode
		want game.ActionRequest
	}{
		{aimMove, game.MoveRequest(game.DirLeft)},
		{aimAttack, game.AttackRequest(game.DirLeft, game.SlotSecondary)},
		{aimHeal, game.HealRequest(game.DirLeft)},
		{aimRepair, game.RepairRequest(game.DirLeft)},
	}
	for _, tc := range cases {
		got := requestFor(tc.mode, game.DirLeft, game.SlotSecondary)
		if got.Kind != tc.want.Kind || got.Dir != tc.want.Dir {
			t.Errorf("%s: got %v, want %v", tc.mode, got, tc.want)
		}
		if tc.mode == aimAttack && got.Slot != game.SlotSecondary {
			t.Errorf("attack slot = %v", got.Slot)
		}
	}
}

func TestNextPlayerUnit(t *testing.T) {
	w := game.NewWorld(game.NewGrid(5, 5, 0))
	if err := w.AddFaction(game.Faction{ID: 1, Name: "Red"}); err != nil {
		t.Fatal(err)
	}
	for i, c := range []game.Controller{game.ControllerPlayer, game.ControllerNPC, game.ControllerPlayer} {
		_, err := w.Spawn(game.UnitSpec{
			Label: "u", Faction: 1, Controller: c, Pos: game.GridPos{X: i, Y: 0},
			MaxHP: 10, MaxEnergy: 10, MoveRange: 1, VisionRange: 1,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	living := w.Living()
	if got := nextPlayerUnit(living, game.NoUnit); got != 0 {
		t.Errorf("first pick = %d, want 0", got)
	}
	if got := nextPlayerUnit(living, 0); got != 2 {
		t.Errorf("after 0 = %d, want 2", got)
	}
	if got := nextPlayerUnit(living, 2); got != 0 {
		t.Errorf("after 2 should wrap to 0, got %d", got)
	}
}

func TestCopyText_RecentWindow(t *testing.T) {
	sl := game.NewSimLog(false)
	for tick := 1; tick <= copyWindow+20; tick++ {
		sl.Add(tick, "R0", "Red", "wait", "resolved", fmt.Sprintf("tick-%d", tick), 0)
	}
	tick := copyWindow + 20

	recent := copyText(sl, tick, false)
	if got := strings.Count(recent, "\n"); got != copyWindow {
		t.Fatalf("recent copy has %d lines, want %d", got, copyWindow)
	}
	if strings.Contains(recent, "tick-20\n") || !strings.Contains(recent, "tick-21\n") {
		t.Fatalf("recent copy window starts at the wrong tick:\n%s", recent[:80])
	}

	full := copyText(sl, tick, true)
	if got := strings.Count(full, "\n"); got != copyWindow+20 {
		t.Fatalf("full copy has %d lines, want %d", got, copyWindow+20)
	}
	if short := copyText(sl, 5, false); strings.Count(short, "\n") != 5 {
		t.Fatalf("early copy should hold ticks 1..5:\n%s", short)
	}
}
