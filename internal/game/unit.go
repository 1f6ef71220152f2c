package game

import "fmt"

// UnitID is a stable handle into the world's unit arena.
type UnitID int

// NoUnit marks "no target".
const NoUnit UnitID = -1

// Capability is the energy cost and effect magnitude of a non-weapon action.
type Capability struct {
	Cost      int `mapstructure:"cost"`
	Magnitude int `mapstructure:"magnitude"`
}

// UnitSpec is everything the scenario factory needs to build a unit.
type UnitSpec struct {
	Sprite      string // opaque asset handle, passed through to renderers
	Label       string
	Faction     FactionID
	Controller  Controller
	Pos         GridPos
	MaxHP       int
	MaxArmor    int
	MaxEnergy   int
	EnergyRegen int
	MoveRange   int
	MoveCost    int
	VisionRange int
	Evasion     int     // percent
	Scale       float64 // visual size hint, 1.0 = one tile
	Weapons     []*WeaponStats
	Dodge       Capability
	Heal        Capability
	Repair      Capability
}

// Unit is one record in the arena.
type Unit struct {
	id         UnitID
	label      string
	sprite     string
	faction    FactionID
	controller Controller
	pos        GridPos
	scale      float64

	HP     Ledger
	Armor  Ledger
	Energy Ledger

	energyRegen int
	moveRange   int
	moveCost    int
	visionRange int
	evasion     int

	weapons [maxWeapons]*Weapon
	dodge   Capability
	heal    Capability
	repair  Capability

	pending      *ActionRequest
	evadeThrough int // last tick on which the dodge bonus applies; 0 = never
	defeated     bool
}

func newUnit(id UnitID, spec UnitSpec) (*Unit, error) {
	if len(spec.Weapons) > int(maxWeapons) {
		return nil, fmt.Errorf("%w: %d weapons, max %d", ErrTooManyWeapons, len(spec.Weapons), int(maxWeapons))
	}
	scale := spec.Scale
	if scale <= 0 {
		scale = 1.0
	}
	label := spec.Label
	if label == "" {
		label = fmt.Sprintf("U%d", id)
	}
	u := &Unit{
		id:          id,
		label:       label,
		sprite:      spec.Sprite,
		faction:     spec.Faction,
		controller:  spec.Controller,
		pos:         spec.Pos,
		scale:       scale,
		HP:          NewLedger(spec.MaxHP),
		Armor:       NewLedger(spec.MaxArmor),
		Energy:      NewLedger(spec.MaxEnergy),
		energyRegen: spec.EnergyRegen,
		moveRange:   spec.MoveRange,
		moveCost:    spec.MoveCost,
		visionRange: spec.VisionRange,
		evasion:     spec.Evasion,
		dodge:       spec.Dodge,
		heal:        spec.Heal,
		repair:      spec.Repair,
	}
	for i, ws := range spec.Weapons {
		if ws != nil {
			u.weapons[i] = NewWeapon(ws)
		}
	}
	return u, nil
}

func (u *Unit) ID() UnitID { return u.id }
func (u *Unit) Label() string { return u.label }
func (u *Unit) Sprite() string { return u.sprite }
func (u *Unit) Faction() FactionID { return u.faction }
func (u *Unit) Controller() Controller { return u.controller }
func (u *Unit) Pos() GridPos { return u.pos }
func (u *Unit) Scale() float64 { return u.scale }
func (u *Unit) MoveCost() int { return u.moveCost }
func (u *Unit) MoveRange() int { return u.moveRange }
func (u *Unit) VisionRange() int { return u.visionRange }
func (u *Unit) EnergyRegen() int { return u.energyRegen }

// Alive reports whether the unit can still act and be targeted.
func (u *Unit) Alive() bool { return !u.defeated }

// Weapon returns the weapon in slot, or nil.
func (u *Unit) Weapon(slot WeaponSlot) *Weapon {
	if !slot.Valid() {
		return nil
	}
	return u.weapons[slot]
}

// Pending returns the queued request, if any.
func (u *Unit) Pending() (ActionRequest, bool) {
	if u.pending == nil {
		return ActionRequest{}, false
	}
	return *u.pending, true
}

// Idle reports whether the unit has no pending request.
func (u *Unit) Idle() bool { return u.pending == nil }

// assign attaches req. A second request in the same tick is rejected and
// the first one kept.
func (u *Unit) assign(req ActionRequest) error {
	if u.pending != nil {
		return fmt.Errorf("%s: %w (%s)", u.label, ErrActionPending, u.pending)
	}
	r := req
	u.pending = &r
	return nil
}

func (u *Unit) clearRequest() {
	u.pending = nil
}

// Evading reports whether the dodge bonus applies on tick.
func (u *Unit) Evading(tick int) bool {
	return u.evadeThrough > 0 && tick <= u.evadeThrough
}

// EffectiveEvasion returns the evasion used by hit rolls on tick.
func (u *Unit) EffectiveEvasion(tick int) int {
	if u.Evading(tick) {
		return u.evasion + u.dodge.Magnitude
	}
	return u.evasion
}

// FireWeapon runs the firing contract: ammo is checked first without
// mutating anything, then energy is spent, then the round is consumed.
// A failed fire never costs energy.
func (u *Unit) FireWeapon(slot WeaponSlot) (*Weapon, error) {
	w := u.Weapon(slot)
	if w == nil {
		return nil, fmt.Errorf("%s %s: %w", u.label, slot, ErrNoWeapon)
	}
	if w.Ammo() <= 0 {
		return nil, fmt.Errorf("%s %s: %w", u.label, w.Stats.Name, ErrOutOfAmmo)
	}
	if !u.Energy.Spend(w.Stats.EnergyCost) {
		return nil, fmt.Errorf("%s %s needs %d energy, has %d: %w",
			u.label, w.Stats.Name, w.Stats.EnergyCost, u.Energy.Current(), ErrInsufficientEnergy)
	}
	if err := w.Fire(); err != nil {
		u.Energy.Restore(w.Stats.EnergyCost)
		return nil, err
	}
	return w, nil
}

// regenerate applies the per-tick energy regeneration.
func (u *Unit) regenerate() {
	u.Energy.Restore(u.energyRegen)
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s@%s hp=%s ap=%s en=%s", u.label, u.pos, u.HP, u.Armor, u.Energy)
}
