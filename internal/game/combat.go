package game

import "math/rand"

// --- Combat constants ---

const (
	minHitChance = 5  // percent, a shot is never hopeless
	maxHitChance = 95 // percent, a shot is never certain
)

// hitChance returns the percent chance that w hits def on tick.
//
//	accuracy - evasion, halved when the target out-dodges the weapon's
//	agility limit, halved again when the target out-runs its speed limit,
//	clamped to [minHitChance, maxHitChance].
func hitChance(w *WeaponStats, def *Unit, tick int) int {
	evasion := def.EffectiveEvasion(tick)
	chance := w.Accuracy - evasion
	if evasion > w.AgilityLimit {
		chance /= 2
	}
	if def.moveRange > w.SpeedLimit {
		chance /= 2
	}
	return clampInt(chance, minHitChance, maxHitChance)
}

// rollHit draws one d100 against chance.
func rollHit(rng *rand.Rand, chance int) bool {
	return rng.Intn(100) < chance
}

// damageReport is what one hit did to its target.
type damageReport struct {
	hp    int // hit points removed
	armor int // armor points removed
}

func (d damageReport) total() int { return d.hp + d.armor }

// applyHit resolves a hit from w against def. The armor-piercing share of the
// damage goes straight to hit points; the rest drains armor first and only
// the overflow reaches hit points.
func applyHit(w *WeaponStats, def *Unit) damageReport {
	dmg := w.Damage
	if dmg <= 0 {
		return damageReport{}
	}
	pierce := w.ArmorPiercing
	if pierce < 0 {
		pierce = 0
	}
	if pierce > dmg {
		pierce = dmg
	}
	blunt := dmg - pierce

	var rep damageReport
	rep.armor = def.Armor.Drain(blunt)
	rep.hp = def.HP.Drain(pierce + blunt - rep.armor)
	if def.HP.Empty() {
		def.defeated = true
	}
	return rep
}
