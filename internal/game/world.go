package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
)

// World is the unit arena: every unit lives in one slice indexed by its
// UnitID, and grid occupancy is a flat slice of ids. Defeated units keep their
// slot so handles stay stable.
type World struct {
	grid      Grid
	factions  map[FactionID]Faction
	units     []*Unit
	occupancy []UnitID
	tick      int
	rng       *rand.Rand
	log       zerolog.Logger
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithSeed seeds the combat RNG for deterministic runs.
func WithSeed(seed int64) WorldOption {
	return func(w *World) {
		w.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	}
}

// WithRand injects the combat RNG.
func WithRand(rng *rand.Rand) WorldOption {
	return func(w *World) {
		if rng != nil {
			w.rng = rng
		}
	}
}

// WithLogger sets the operational logger. Default is zerolog.Nop().
func WithLogger(l zerolog.Logger) WorldOption {
	return func(w *World) {
		w.log = l
	}
}

// NewWorld creates an empty world on grid.
func NewWorld(grid Grid, opts ...WorldOption) *World {
	w := &World{
		grid:     grid,
		factions: make(map[FactionID]Faction),
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- deterministic default
		log:      zerolog.Nop(),
	}
	w.occupancy = make([]UnitID, grid.Cells())
	for i := range w.occupancy {
		w.occupancy[i] = NoUnit
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Grid returns the playfield.
func (w *World) Grid() Grid { return w.grid }

// Tick returns the number of ticks started so far.
func (w *World) Tick() int { return w.tick }

// AddFaction registers f. Ids must be unique.
func (w *World) AddFaction(f Faction) error {
	if _, ok := w.factions[f.ID]; ok {
		return fmt.Errorf("faction %d already registered", f.ID)
	}
	w.factions[f.ID] = f
	return nil
}

// Faction looks up a faction by id.
func (w *World) Faction(id FactionID) (Faction, bool) {
	f, ok := w.factions[id]
	return f, ok
}

// Factions returns all factions ordered by id.
func (w *World) Factions() []Faction {
	out := make([]Faction, 0, len(w.factions))
	for _, f := range w.factions {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FactionName returns the faction's name, or its id when unknown.
func (w *World) FactionName(id FactionID) string {
	if f, ok := w.factions[id]; ok {
		return f.Name
	}
	return fmt.Sprintf("faction-%d", id)
}

// Spawn is the unit factory: it validates spec against the world and returns
// a fully initialized unit with full ledgers and loaded weapons.
func (w *World) Spawn(spec UnitSpec) (*Unit, error) {
	if _, ok := w.factions[spec.Faction]; !ok {
		return nil, fmt.Errorf("spawn %q: %w %d", spec.Label, ErrUnknownFaction, spec.Faction)
	}
	if spec.MaxHP <= 0 {
		return nil, fmt.Errorf("spawn %q: max hp must be positive, got %d", spec.Label, spec.MaxHP)
	}
	if !w.grid.InBounds(spec.Pos) {
		return nil, fmt.Errorf("spawn %q at %s: %w", spec.Label, spec.Pos, ErrOutOfBounds)
	}
	if occ, ok := w.UnitAt(spec.Pos); ok {
		return nil, fmt.Errorf("spawn %q at %s held by %s: %w", spec.Label, spec.Pos, occ.label, ErrCellOccupied)
	}
	u, err := newUnit(UnitID(len(w.units)), spec)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", spec.Label, err)
	}
	w.units = append(w.units, u)
	w.occupancy[w.grid.index(u.pos)] = u.id
	w.log.Debug().Str("unit", u.label).Str("faction", w.FactionName(u.faction)).
		Str("pos", u.pos.String()).Msg("unit spawned")
	return u, nil
}

// Unit returns the unit with id, defeated or not.
func (w *World) Unit(id UnitID) (*Unit, bool) {
	if id < 0 || int(id) >= len(w.units) {
		return nil, false
	}
	return w.units[id], true
}

// Units returns every unit in handle order, including defeated ones.
func (w *World) Units() []*Unit {
	return w.units
}

// Living returns the units that can still act, in handle order.
func (w *World) Living() []*Unit {
	out := make([]*Unit, 0, len(w.units))
	for _, u := range w.units {
		if u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// LivingByFaction returns the living units of faction f.
func (w *World) LivingByFaction(f FactionID) []*Unit {
	var out []*Unit
	for _, u := range w.units {
		if u.Alive() && u.faction == f {
			out = append(out, u)
		}
	}
	return out
}

// UnitAt returns the living unit occupying p.
func (w *World) UnitAt(p GridPos) (*Unit, bool) {
	if !w.grid.InBounds(p) {
		return nil, false
	}
	id := w.occupancy[w.grid.index(p)]
	if id == NoUnit {
		return nil, false
	}
	return w.units[id], true
}

// Submit attaches req to unit id. This is the entry point for player input;
// the driver uses it for AI decisions too.
func (w *World) Submit(id UnitID, req ActionRequest) error {
	u, ok := w.Unit(id)
	if !ok {
		return fmt.Errorf("submit to %d: %w", id, ErrUnknownUnit)
	}
	if !u.Alive() {
		return fmt.Errorf("submit to %s: %w", u.label, ErrUnitDefeated)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("submit to %s: %w", u.label, err)
	}
	return u.assign(req)
}

// Requested returns a snapshot of the units whose pending request is of
// kind k, in handle order.
func (w *World) Requested(k ActionKind) []*Unit {
	var out []*Unit
	for _, u := range w.units {
		if u.pending != nil && u.pending.Kind == k {
			out = append(out, u)
		}
	}
	return out
}

// PendingCount returns how many units hold a request.
func (w *World) PendingCount() int {
	n := 0
	for _, u := range w.units {
		if u.pending != nil {
			n++
		}
	}
	return n
}

// beginTick advances the tick counter and regenerates energy.
func (w *World) beginTick() int {
	w.tick++
	for _, u := range w.units {
		if u.Alive() {
			u.regenerate()
		}
	}
	return w.tick
}

// relocate moves u to an in-bounds free cell. Callers validate first.
func (w *World) relocate(u *Unit, to GridPos) {
	w.occupancy[w.grid.index(u.pos)] = NoUnit
	u.pos = to
	w.occupancy[w.grid.index(to)] = u.id
}

// vacate frees the cell of a defeated unit.
func (w *World) vacate(u *Unit) {
	idx := w.grid.index(u.pos)
	if w.occupancy[idx] == u.id {
		w.occupancy[idx] = NoUnit
	}
}

// firstUnitAlong returns the first living unit within reach cells of origin
// in direction d. Sight stops at the edge of the grid.
func (w *World) firstUnitAlong(origin GridPos, d Direction, reach int) (*Unit, bool) {
	return scanAlong(w, origin, d, reach)
}
