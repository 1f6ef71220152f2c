package game

import (
	"fmt"
)

// Resolution is the record of one request being validated and applied.
type Resolution struct {
	Tick    int
	Unit    UnitID
	Label   string
	Faction FactionID
	Request ActionRequest
	Target  UnitID // NoUnit when the action has no target
	Err     error  // nil on success

	Hit         bool
	Chance      int // hit chance in percent, attacks only
	HPDamage    int
	ArmorDamage int
	Restored    int  // heal / repair amount actually restored
	Defeated    bool // the target went down on this resolution

	Pos    GridPos // unit position after resolution
	Energy int     // unit energy after resolution
}

// OK reports whether the request was applied.
func (r Resolution) OK() bool { return r.Err == nil }

// Key is the short outcome name used by logs and metrics.
func (r Resolution) Key() string { return failureKey(r.Err) }

func (r Resolution) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s failed: %v", r.Label, r.Request, r.Err)
	}
	switch r.Request.Kind {
	case ActionAttack:
		if !r.Hit {
			return fmt.Sprintf("%s %s missed (%d%%)", r.Label, r.Request, r.Chance)
		}
		return fmt.Sprintf("%s %s hit for %d hp / %d ap (%d%%)", r.Label, r.Request, r.HPDamage, r.ArmorDamage, r.Chance)
	case ActionHeal, ActionRepair:
		return fmt.Sprintf("%s %s restored %d", r.Label, r.Request, r.Restored)
	default:
		return fmt.Sprintf("%s %s -> %s", r.Label, r.Request, r.Pos)
	}
}

// ResolvePending runs every resolution system once, in resolutionOrder.
// Each system works on a snapshot of the units requested for its kind, so a
// unit is never observed twice in one tick. Every request is cleared.
func (w *World) ResolvePending() []Resolution {
	var out []Resolution
	for _, kind := range resolutionOrder {
		for _, u := range w.Requested(kind) {
			out = append(out, w.resolve(u))
		}
	}
	return out
}

// resolve dispatches u's pending request to its system and clears it.
func (w *World) resolve(u *Unit) Resolution {
	req := *u.pending
	u.clearRequest()

	res := Resolution{
		Tick:    w.tick,
		Unit:    u.id,
		Label:   u.label,
		Faction: u.faction,
		Request: req,
		Target:  NoUnit,
	}
	if !u.Alive() {
		res.Err = ErrUnitDefeated
	} else {
		switch req.Kind {
		case ActionMove:
			w.resolveMove(u, req, &res)
		case ActionAttack:
			w.resolveAttack(u, req, &res)
		case ActionDodge:
			w.resolveDodge(u, &res)
		case ActionHeal:
			w.resolveRestore(u, req, u.heal, &res)
		case ActionRepair:
			w.resolveRestore(u, req, u.repair, &res)
		case ActionWait:
			// nothing to apply
		default:
			res.Err = ErrInvalidRequest
		}
	}
	res.Pos = u.pos
	res.Energy = u.Energy.Current()
	if res.Err != nil {
		w.log.Debug().Int("tick", w.tick).Str("unit", u.label).Str("request", req.String()).
			Err(res.Err).Msg("request discarded")
	}
	return res
}

// resolveMove validates bounds and occupancy before spending energy, so a
// failed move never costs anything.
func (w *World) resolveMove(u *Unit, req ActionRequest, res *Resolution) {
	dest := u.pos.Add(req.Dir.Offset())
	if !w.grid.InBounds(dest) {
		res.Err = fmt.Errorf("%s to %s: %w", u.label, dest, ErrOutOfBounds)
		return
	}
	if occ, ok := w.UnitAt(dest); ok {
		res.Err = fmt.Errorf("%s to %s held by %s: %w", u.label, dest, occ.label, ErrCellOccupied)
		res.Target = occ.id
		return
	}
	if !u.Energy.Spend(u.moveCost) {
		res.Err = fmt.Errorf("%s move needs %d, has %d: %w", u.label, u.moveCost, u.Energy.Current(), ErrInsufficientEnergy)
		return
	}
	w.relocate(u, dest)
}

func (w *World) resolveAttack(u *Unit, req ActionRequest, res *Resolution) {
	if u.Weapon(req.Slot) == nil {
		res.Err = fmt.Errorf("%s %s: %w", u.label, req.Slot, ErrNoWeapon)
		return
	}
	target, ok := w.firstUnitAlong(u.pos, req.Dir, u.visionRange)
	if !ok || target.faction == u.faction {
		res.Err = fmt.Errorf("%s attack %s: %w", u.label, req.Dir, ErrNoValidTarget)
		return
	}
	res.Target = target.id
	weapon, err := u.FireWeapon(req.Slot)
	if err != nil {
		res.Err = err
		return
	}
	res.Chance = hitChance(weapon.Stats, target, w.tick)
	if !rollHit(w.rng, res.Chance) {
		return
	}
	res.Hit = true
	dmg := applyHit(weapon.Stats, target)
	res.HPDamage = dmg.hp
	res.ArmorDamage = dmg.armor
	if !target.Alive() {
		res.Defeated = true
		w.vacate(target)
		w.log.Info().Int("tick", w.tick).Str("unit", target.label).Str("by", u.label).Msg("unit defeated")
	}
}

// resolveDodge keeps the evasion bonus up through the next tick, so it covers
// attacks resolved later this tick and all of the next one.
func (w *World) resolveDodge(u *Unit, res *Resolution) {
	if !u.Energy.Spend(u.dodge.Cost) {
		res.Err = fmt.Errorf("%s dodge needs %d, has %d: %w", u.label, u.dodge.Cost, u.Energy.Current(), ErrInsufficientEnergy)
		return
	}
	u.evadeThrough = w.tick + 1
}

// resolveRestore handles both heal (hit points) and repair (armor points) on
// the adjacent ally in req.Dir. The target is validated before energy is spent.
func (w *World) resolveRestore(u *Unit, req ActionRequest, capa Capability, res *Resolution) {
	target, ok := w.UnitAt(u.pos.Add(req.Dir.Offset()))
	if !ok || target.faction != u.faction {
		res.Err = fmt.Errorf("%s %s: %w", u.label, req, ErrNoValidTarget)
		return
	}
	ledger := &target.HP
	if req.Kind == ActionRepair {
		ledger = &target.Armor
	}
	if ledger.Full() {
		res.Err = fmt.Errorf("%s %s: %s already full: %w", u.label, req, target.label, ErrNoValidTarget)
		return
	}
	res.Target = target.id
	if !u.Energy.Spend(capa.Cost) {
		res.Err = fmt.Errorf("%s %s needs %d, has %d: %w", u.label, req.Kind, capa.Cost, u.Energy.Current(), ErrInsufficientEnergy)
		return
	}
	before := ledger.Current()
	ledger.Restore(capa.Magnitude)
	res.Restored = ledger.Current() - before
}
