package game

import (
	"fmt"
	"strings"
)

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// FactionTally is one faction's survivor count.
type FactionTally struct {
	Faction   Faction
	Survivors int
	Total     int
}

type BattleOutcomeReason struct {
	Outcome     BattleOutcome
	Winner      FactionID // only meaningful for OutcomeVictory
	Tallies     []FactionTally
	Description string
}

// DetermineBattleOutcome reads the world as it stands: one faction left
// standing is a victory, none is a draw, more than one is inconclusive.
func DetermineBattleOutcome(w *World) BattleOutcomeReason {
	var reason BattleOutcomeReason
	var standing []FactionTally
	for _, f := range w.Factions() {
		t := FactionTally{Faction: f}
		for _, u := range w.Units() {
			if u.faction != f.ID {
				continue
			}
			t.Total++
			if u.Alive() {
				t.Survivors++
			}
		}
		reason.Tallies = append(reason.Tallies, t)
		if t.Survivors > 0 {
			standing = append(standing, t)
		}
	}

	switch len(standing) {
	case 0:
		reason.Outcome = OutcomeDraw
		reason.Description = "no faction left standing"
	case 1:
		reason.Outcome = OutcomeVictory
		reason.Winner = standing[0].Faction.ID
		reason.Description = fmt.Sprintf("%s holds the field with %d/%d",
			standing[0].Faction.Name, standing[0].Survivors, standing[0].Total)
	default:
		reason.Outcome = OutcomeInconclusive
		parts := make([]string, 0, len(standing))
		for _, t := range standing {
			parts = append(parts, fmt.Sprintf("%s %d/%d", t.Faction.Name, t.Survivors, t.Total))
		}
		reason.Description = "still fighting: " + strings.Join(parts, ", ")
	}
	return reason
}
