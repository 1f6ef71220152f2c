package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event.
type SimLogEntry struct {
	Tick     int
	Unit     string  // label e.g. "R0", "B3", or "--" for global events
	Faction  string  // faction name or "--"
	Category string  // action kind, or "tick" / "outcome"
	Key      string  // "resolved" or the failure reason
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value (damage, restored amount)
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] R0   move      resolved         R0 move up → (2,3)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Unit, e.Category, e.Key, e.Value)
}

// SimLog collects structured events for tests, reports and the front-end.
// It is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and
// energy samples are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, unit, faction, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Unit:     unit,
		Faction:  faction,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, unit, faction, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, unit, faction, category, key, value, numVal)
}

// Verbose reports whether per-tick samples are recorded.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// AddResolution records one resolution under its action kind.
func (sl *SimLog) AddResolution(r Resolution, faction string) {
	num := float64(r.HPDamage + r.ArmorDamage + r.Restored)
	sl.Add(r.Tick, r.Label, faction, r.Request.Kind.String(), r.Key(), r.String(), num)
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the world.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", w.Tick())

	for _, f := range w.Factions() {
		living := w.LivingByFaction(f.ID)
		fmt.Fprintf(&sb, "%s alive=%d", f.Name, len(living))
		for _, u := range living {
			fmt.Fprintf(&sb, "  %s%s hp=%s en=%s", u.Label(), u.Pos(), u.HP, u.Energy)
		}
		sb.WriteByte('\n')
	}

	for k := ActionMove; k < actionKindCount; k++ {
		ok := sl.CountCategory(k.String(), "resolved")
		all := sl.CountCategory(k.String(), "")
		if all == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s: %d/%d resolved\n", k, ok, all)
	}
	return sb.String()
}
