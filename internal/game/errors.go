package game

import "errors"

// Resolution failures. None of these are fatal: a failed request is discarded
// and the unit is a no-op for the tick.
var (
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrOutOfAmmo          = errors.New("out of ammo")
	ErrOutOfBounds        = errors.New("destination out of bounds")
	ErrCellOccupied       = errors.New("destination occupied")
	ErrNoValidTarget      = errors.New("no valid target")
	ErrUnitDefeated       = errors.New("unit defeated")
)

// Setup and submission errors.
var (
	ErrActionPending   = errors.New("action already pending")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrUnknownFaction  = errors.New("unknown faction")
	ErrNoWeapon        = errors.New("no weapon in slot")
	ErrTooManyWeapons  = errors.New("too many weapons")
	ErrInvalidRequest  = errors.New("invalid action request")
	ErrUnknownTemplate = errors.New("unknown weapon template")
)

// failureKey maps a resolution error to the short SimLog/metrics key.
func failureKey(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, ErrInsufficientEnergy):
		return "insufficient_energy"
	case errors.Is(err, ErrOutOfAmmo):
		return "out_of_ammo"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrCellOccupied):
		return "occupied"
	case errors.Is(err, ErrNoValidTarget):
		return "no_target"
	case errors.Is(err, ErrUnitDefeated):
		return "defeated"
	case errors.Is(err, ErrNoWeapon):
		return "no_weapon"
	default:
		return "failed"
	}
}
