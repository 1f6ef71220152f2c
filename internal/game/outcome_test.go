package game

import "testing"

func TestDetermineBattleOutcome(t *testing.T) {
	w := newTestWorld(t, 5, 5)
	r := mustSpawn(t, w, testUnit("r", red, 0, 0))
	b := mustSpawn(t, w, testUnit("b", blue, 4, 4))

	if got := DetermineBattleOutcome(w); got.Outcome != OutcomeInconclusive {
		t.Fatalf("both standing: %s", got.Outcome)
	}

	b.defeated = true
	got := DetermineBattleOutcome(w)
	if got.Outcome != OutcomeVictory || got.Winner != red {
		t.Fatalf("red alone: %+v", got)
	}
	if got.Tallies[1].Survivors != 0 || got.Tallies[1].Total != 1 {
		t.Fatalf("blue tally = %+v", got.Tallies[1])
	}

	r.defeated = true
	if got := DetermineBattleOutcome(w); got.Outcome != OutcomeDraw {
		t.Fatalf("nobody standing: %s", got.Outcome)
	}
}
