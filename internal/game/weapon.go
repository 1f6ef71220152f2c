package game

import "fmt"

// WeaponStats is an immutable weapon template shared by every instance.
type WeaponStats struct {
	Name          string `mapstructure:"name"`
	ArmorPiercing int    `mapstructure:"armorPiercing"` // damage that bypasses armor
	Accuracy      int    `mapstructure:"accuracy"`      // percent before evasion
	Damage        int    `mapstructure:"damage"`
	AgilityLimit  int    `mapstructure:"agilityLimit"` // target evasion tracked without penalty
	SpeedLimit    int    `mapstructure:"speedLimit"`   // target movement range tracked without penalty
	MaxAmmo       int    `mapstructure:"maxAmmo"`
	EnergyCost    int    `mapstructure:"energyCost"`
}

// Weapon is a loaded instance of a template.
type Weapon struct {
	Stats *WeaponStats
	ammo  int
}

// NewWeapon returns a fully loaded weapon.
func NewWeapon(stats *WeaponStats) *Weapon {
	return &Weapon{Stats: stats, ammo: stats.MaxAmmo}
}

// Ammo returns the rounds left.
func (w *Weapon) Ammo() int { return w.ammo }

// Fire consumes one round. Ammo never goes negative.
func (w *Weapon) Fire() error {
	if w.ammo <= 0 {
		return ErrOutOfAmmo
	}
	w.ammo--
	return nil
}

// Reload adds n rounds, clamped to the template's max.
func (w *Weapon) Reload(n int) {
	if n <= 0 {
		return
	}
	w.ammo = clampInt(w.ammo+n, 0, w.Stats.MaxAmmo)
}

func (w *Weapon) String() string {
	return fmt.Sprintf("%s %d/%d", w.Stats.Name, w.ammo, w.Stats.MaxAmmo)
}

// WeaponSlot selects one of a unit's three weapon mounts.
type WeaponSlot int

const (
	SlotPrimary WeaponSlot = iota
	SlotSecondary
	SlotTertiary
	maxWeapons // sentinel
)

func (s WeaponSlot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	case SlotTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Valid reports whether s names one of the three mounts.
func (s WeaponSlot) Valid() bool {
	return s >= SlotPrimary && s < maxWeapons
}
