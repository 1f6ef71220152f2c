package game

import "fmt"

// Ledger is a (current, max) resource pair. current stays in [0, max].
// Energy, hit points and armor points are all ledgers.
type Ledger struct {
	current int
	max     int
}

// NewLedger returns a full ledger.
func NewLedger(max int) Ledger {
	if max < 0 {
		max = 0
	}
	return Ledger{current: max, max: max}
}

// NewLedgerAt returns a ledger with current clamped into [0, max].
func NewLedgerAt(current, max int) Ledger {
	l := NewLedger(max)
	l.current = clampInt(current, 0, l.max)
	return l
}

// Current returns the current amount.
func (l Ledger) Current() int { return l.current }

// Max returns the capacity.
func (l Ledger) Max() int { return l.max }

// Full reports whether current == max.
func (l Ledger) Full() bool { return l.current == l.max }

// Empty reports whether current == 0.
func (l Ledger) Empty() bool { return l.current == 0 }

// Spend subtracts amount if affordable. It is the only affordability gate:
// on false the ledger is unchanged.
func (l *Ledger) Spend(amount int) bool {
	if amount < 0 || l.current < amount {
		return false
	}
	l.current -= amount
	return true
}

// Restore adds amount, clamped to max.
func (l *Ledger) Restore(amount int) {
	if amount <= 0 {
		return
	}
	l.current = clampInt(l.current+amount, 0, l.max)
}

// Drain removes up to amount and returns what was actually removed.
// Used for damage, never for affordability.
func (l *Ledger) Drain(amount int) int {
	if amount <= 0 {
		return 0
	}
	taken := amount
	if taken > l.current {
		taken = l.current
	}
	l.current -= taken
	return taken
}

func (l Ledger) String() string {
	return fmt.Sprintf("%d/%d", l.current, l.max)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
