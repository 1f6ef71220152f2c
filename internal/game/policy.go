package game

import (
	"math/rand"
)

// WorldView is the read side of the world handed to decision policies.
type WorldView interface {
	Grid() Grid
	Tick() int
	Unit(id UnitID) (*Unit, bool)
	UnitAt(p GridPos) (*Unit, bool)
	Living() []*Unit
}

var _ WorldView = (*World)(nil)

// DecisionPolicy picks the request for an idle NPC unit.
type DecisionPolicy interface {
	Decide(u *Unit, view WorldView) ActionRequest
}

// PolicyFunc adapts a function to DecisionPolicy.
type PolicyFunc func(u *Unit, view WorldView) ActionRequest

// Decide calls f.
func (f PolicyFunc) Decide(u *Unit, view WorldView) ActionRequest { return f(u, view) }

// RandomMovePolicy moves every unit in a uniformly random direction.
type RandomMovePolicy struct {
	rng *rand.Rand
}

// NewRandomMovePolicy returns a seeded RandomMovePolicy.
func NewRandomMovePolicy(seed int64) *RandomMovePolicy {
	return &RandomMovePolicy{rng: rand.New(rand.NewSource(seed))} // #nosec G404 -- game only
}

// Decide implements DecisionPolicy.
func (p *RandomMovePolicy) Decide(_ *Unit, _ WorldView) ActionRequest {
	return MoveRequest(Directions[p.rng.Intn(len(Directions))])
}

// ScriptedPolicy replays a fixed list of requests per unit and waits once a
// unit's script runs out.
type ScriptedPolicy struct {
	scripts map[UnitID][]ActionRequest
}

// NewScriptedPolicy returns an empty script.
func NewScriptedPolicy() *ScriptedPolicy {
	return &ScriptedPolicy{scripts: make(map[UnitID][]ActionRequest)}
}

// Push appends reqs to unit id's script.
func (p *ScriptedPolicy) Push(id UnitID, reqs ...ActionRequest) *ScriptedPolicy {
	p.scripts[id] = append(p.scripts[id], reqs...)
	return p
}

// Remaining returns how many scripted requests are left for id.
func (p *ScriptedPolicy) Remaining(id UnitID) int {
	return len(p.scripts[id])
}

// Decide implements DecisionPolicy.
func (p *ScriptedPolicy) Decide(u *Unit, _ WorldView) ActionRequest {
	q := p.scripts[u.ID()]
	if len(q) == 0 {
		return WaitRequest()
	}
	p.scripts[u.ID()] = q[1:]
	return q[0]
}

// SkirmishPolicy is the default battle AI. In priority order:
//  1. fire at an enemy in sight with the first weapon that can shoot
//  2. heal, then repair, an adjacent hurt ally
//  3. dodge when badly hurt
//  4. close distance on the nearest enemy
//  5. otherwise wander
type SkirmishPolicy struct {
	rng *rand.Rand
}

// NewSkirmishPolicy returns a seeded SkirmishPolicy.
func NewSkirmishPolicy(seed int64) *SkirmishPolicy {
	return &SkirmishPolicy{rng: rand.New(rand.NewSource(seed))} // #nosec G404 -- game only
}

// Decide implements DecisionPolicy.
func (p *SkirmishPolicy) Decide(u *Unit, view WorldView) ActionRequest {
	if req, ok := p.attack(u, view); ok {
		return req
	}
	if req, ok := p.support(u, view); ok {
		return req
	}
	if u.dodge.Magnitude > 0 && u.HP.Current()*3 < u.HP.Max() && !u.Evading(view.Tick()+1) && u.Energy.Current() >= u.dodge.Cost {
		return DodgeRequest()
	}
	if u.Energy.Current() < u.moveCost {
		return WaitRequest()
	}
	if req, ok := p.advance(u, view); ok {
		return req
	}
	return MoveRequest(Directions[p.rng.Intn(len(Directions))])
}

func (p *SkirmishPolicy) attack(u *Unit, view WorldView) (ActionRequest, bool) {
	slot, ok := p.readyWeapon(u)
	if !ok {
		return ActionRequest{}, false
	}
	for _, d := range Directions {
		target, seen := scanAlong(view, u.pos, d, u.visionRange)
		if seen && target.Faction() != u.faction {
			return AttackRequest(d, slot), true
		}
	}
	return ActionRequest{}, false
}

// readyWeapon returns the first slot with ammo that the unit can afford.
func (p *SkirmishPolicy) readyWeapon(u *Unit) (WeaponSlot, bool) {
	for s := SlotPrimary; s < maxWeapons; s++ {
		w := u.weapons[s]
		if w != nil && w.Ammo() > 0 && u.Energy.Current() >= w.Stats.EnergyCost {
			return s, true
		}
	}
	return 0, false
}

func (p *SkirmishPolicy) support(u *Unit, view WorldView) (ActionRequest, bool) {
	for _, d := range Directions {
		ally, ok := view.UnitAt(u.pos.Add(d.Offset()))
		if !ok || ally.Faction() != u.faction {
			continue
		}
		if u.heal.Magnitude > 0 && !ally.HP.Full() && u.Energy.Current() >= u.heal.Cost {
			return HealRequest(d), true
		}
		if u.repair.Magnitude > 0 && !ally.Armor.Full() && u.Energy.Current() >= u.repair.Cost {
			return RepairRequest(d), true
		}
	}
	return ActionRequest{}, false
}

// advance steps toward the nearest enemy along the axis with the larger gap,
// falling back to the other axis when that cell is blocked.
func (p *SkirmishPolicy) advance(u *Unit, view WorldView) (ActionRequest, bool) {
	var nearest *Unit
	best := -1
	for _, o := range view.Living() {
		if o.Faction() == u.faction {
			continue
		}
		d := manhattan(u.pos, o.Pos())
		if best < 0 || d < best {
			best, nearest = d, o
		}
	}
	if nearest == nil {
		return ActionRequest{}, false
	}
	dx := nearest.Pos().X - u.pos.X
	dy := nearest.Pos().Y - u.pos.Y
	var prefs []Direction
	horiz, vert := DirRight, DirUp
	if dx < 0 {
		horiz = DirLeft
	}
	if dy < 0 {
		vert = DirDown
	}
	switch {
	case absInt(dx) >= absInt(dy) && dx != 0:
		prefs = append(prefs, horiz)
		if dy != 0 {
			prefs = append(prefs, vert)
		}
	case dy != 0:
		prefs = append(prefs, vert)
		if dx != 0 {
			prefs = append(prefs, horiz)
		}
	}
	for _, d := range prefs {
		dest := u.pos.Add(d.Offset())
		if !view.Grid().InBounds(dest) {
			continue
		}
		if _, taken := view.UnitAt(dest); taken {
			continue
		}
		return MoveRequest(d), true
	}
	return ActionRequest{}, false
}

// scanAlong walks up to reach cells from origin through the read-only view.
func scanAlong(view WorldView, origin GridPos, d Direction, reach int) (*Unit, bool) {
	if reach < 1 {
		reach = 1
	}
	p := origin
	for step := 0; step < reach; step++ {
		p = p.Add(d.Offset())
		if !view.Grid().InBounds(p) {
			return nil, false
		}
		if u, ok := view.UnitAt(p); ok {
			return u, true
		}
	}
	return nil, false
}

func manhattan(a, b GridPos) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
