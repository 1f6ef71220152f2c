package game

import (
	"fmt"
)

// TestSim is a headless simulation harness used by tests. It wraps a World
// and a Driver with deterministic seeding and a structured SimLog.
type TestSim struct {
	Width  int
	Height int
	World  *World
	Driver *Driver
	SimLog *SimLog

	seed     int64
	policy   DecisionPolicy
	factions []Faction
	units    []UnitSpec
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra   simOptionKind = iota // grid size, seed, verbose, policy - applied first
	simOptFaction                      // register factions - applied after the world exists
	simOptUnit                         // spawn units - applied after factions exist
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithGridSize sets the playfield dimensions in cells.
func WithGridSize(w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Width = w
		ts.Height = h
	}}
}

// WithSimSeed sets the combat RNG seed.
func WithSimSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithPolicy sets the NPC decision policy. Default is ScriptedPolicy with no
// scripts, so NPCs wait.
func WithPolicy(p DecisionPolicy) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.policy = p
	}}
}

// WithFaction registers a faction.
func WithFaction(id FactionID, name string) SimOption {
	return SimOption{simOptFaction, func(ts *TestSim) {
		ts.factions = append(ts.factions, Faction{ID: id, Name: name})
	}}
}

// WithUnit spawns a unit. Units get ids in option order.
func WithUnit(spec UnitSpec) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		ts.units = append(ts.units, spec)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (grid size, seed, verbose, policy)
//  2. Build the world
//  3. Factions
//  4. Units
//
// Setup errors are returned so tests can t.Fatalf on them.
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{
		Width:  5,
		Height: 5,
		SimLog: NewSimLog(false),
		seed:   1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.World = NewWorld(NewGrid(ts.Width, ts.Height, 0), WithSeed(ts.seed))

	for _, o := range opts {
		if o.kind == simOptFaction {
			o.fn(ts)
		}
	}
	for _, f := range ts.factions {
		if err := ts.World.AddFaction(f); err != nil {
			return nil, err
		}
	}

	for _, o := range opts {
		if o.kind == simOptUnit {
			o.fn(ts)
		}
	}
	for _, spec := range ts.units {
		if _, err := ts.World.Spawn(spec); err != nil {
			return nil, err
		}
	}

	if ts.policy == nil {
		ts.policy = NewScriptedPolicy()
	}
	d, err := NewDriver(ts.World, ts.policy, WithSimLog(ts.SimLog))
	if err != nil {
		return nil, err
	}
	ts.Driver = d
	return ts, nil
}

// Unit returns the unit with id or panics; tests only.
func (ts *TestSim) Unit(id UnitID) *Unit {
	u, ok := ts.World.Unit(id)
	if !ok {
		panic(fmt.Sprintf("test sim: no unit %d", id))
	}
	return u
}

// Submit queues req for unit id.
func (ts *TestSim) Submit(id UnitID, req ActionRequest) error {
	return ts.World.Submit(id, req)
}

// CurrentTick returns the world tick.
func (ts *TestSim) CurrentTick() int { return ts.World.Tick() }

// RunTicks advances the simulation n ticks and returns every report.
func (ts *TestSim) RunTicks(n int) []TickReport {
	reps := make([]TickReport, 0, n)
	for i := 0; i < n; i++ {
		reps = append(reps, ts.Driver.Tick())
	}
	return reps
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Driver.Tick()
		if predicate(ts) {
			return ts.World.Tick()
		}
	}
	return -1
}

// testUnit returns a unit spec with sane defaults for tests: full ledgers,
// zero evasion, no regen.
func testUnit(label string, f FactionID, x, y int) UnitSpec {
	return UnitSpec{
		Label:       label,
		Faction:     f,
		Pos:         GridPos{X: x, Y: y},
		MaxHP:       50,
		MaxArmor:    20,
		MaxEnergy:   128,
		MoveRange:   1,
		MoveCost:    4,
		VisionRange: 4,
	}
}
