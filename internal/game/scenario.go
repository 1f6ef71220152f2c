package game

import (
	"fmt"
)

// ScenarioSpec describes a battle in config-friendly form. Units reference
// weapon templates by name.
type ScenarioSpec struct {
	Name     string        `mapstructure:"name"`
	Width    int           `mapstructure:"width"`
	Height   int           `mapstructure:"height"`
	TileSize int           `mapstructure:"tileSize"`
	Factions []Faction     `mapstructure:"factions"`
	Weapons  []WeaponStats `mapstructure:"weapons"`
	Units    []UnitConfig  `mapstructure:"units"`
}

// UnitConfig is one unit of a ScenarioSpec.
type UnitConfig struct {
	Label       string     `mapstructure:"label"`
	Sprite      string     `mapstructure:"sprite"`
	Faction     FactionID  `mapstructure:"faction"`
	Controller  string     `mapstructure:"controller"`
	X           int        `mapstructure:"x"`
	Y           int        `mapstructure:"y"`
	HP          int        `mapstructure:"hp"`
	Armor       int        `mapstructure:"armor"`
	Energy      int        `mapstructure:"energy"`
	EnergyRegen int        `mapstructure:"energyRegen"`
	MoveRange   int        `mapstructure:"moveRange"`
	MoveCost    int        `mapstructure:"moveCost"`
	VisionRange int        `mapstructure:"visionRange"`
	Evasion     int        `mapstructure:"evasion"`
	Scale       float64    `mapstructure:"scale"`
	Weapons     []string   `mapstructure:"weapons"`
	Dodge       Capability `mapstructure:"dodge"`
	Heal        Capability `mapstructure:"heal"`
	Repair      Capability `mapstructure:"repair"`
}

// BuildWorld creates the world described by s.
func BuildWorld(s ScenarioSpec, opts ...WorldOption) (*World, error) {
	w := NewWorld(NewGrid(s.Width, s.Height, s.TileSize), opts...)
	for _, f := range s.Factions {
		if err := w.AddFaction(f); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}

	templates := make(map[string]*WeaponStats, len(s.Weapons))
	for i := range s.Weapons {
		ws := s.Weapons[i]
		templates[ws.Name] = &ws
	}

	for _, uc := range s.Units {
		spec, err := uc.spec(templates)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if _, err := w.Spawn(spec); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return w, nil
}

func (uc UnitConfig) spec(templates map[string]*WeaponStats) (UnitSpec, error) {
	spec := UnitSpec{
		Sprite:      uc.Sprite,
		Label:       uc.Label,
		Faction:     uc.Faction,
		Controller:  ParseController(uc.Controller),
		Pos:         GridPos{X: uc.X, Y: uc.Y},
		MaxHP:       uc.HP,
		MaxArmor:    uc.Armor,
		MaxEnergy:   uc.Energy,
		EnergyRegen: uc.EnergyRegen,
		MoveRange:   uc.MoveRange,
		MoveCost:    uc.MoveCost,
		VisionRange: uc.VisionRange,
		Evasion:     uc.Evasion,
		Scale:       uc.Scale,
		Dodge:       uc.Dodge,
		Heal:        uc.Heal,
		Repair:      uc.Repair,
	}
	for _, name := range uc.Weapons {
		ws, ok := templates[name]
		if !ok {
			return UnitSpec{}, fmt.Errorf("unit %q: %w %q", uc.Label, ErrUnknownTemplate, name)
		}
		spec.Weapons = append(spec.Weapons, ws)
	}
	return spec, nil
}

// Built-in weapon templates.
var (
	WeaponRifle  = WeaponStats{Name: "rifle", ArmorPiercing: 2, Accuracy: 75, Damage: 12, AgilityLimit: 30, SpeedLimit: 3, MaxAmmo: 10, EnergyCost: 6}
	WeaponCannon = WeaponStats{Name: "cannon", ArmorPiercing: 8, Accuracy: 55, Damage: 30, AgilityLimit: 15, SpeedLimit: 2, MaxAmmo: 3, EnergyCost: 20}
	WeaponLaser  = WeaponStats{Name: "laser", ArmorPiercing: 0, Accuracy: 90, Damage: 8, AgilityLimit: 40, SpeedLimit: 4, MaxAmmo: 20, EnergyCost: 10}
)

const (
	FactionRed  FactionID = 1
	FactionBlue FactionID = 2
)

// DefaultSkirmish is the built-in 3v3 on a 12×8 board: a trooper, a medic and
// a heavy per side.
func DefaultSkirmish() ScenarioSpec {
	s := ScenarioSpec{
		Name:     "skirmish",
		Width:    defaultGridWidth,
		Height:   defaultGridHeight,
		TileSize: defaultTileSize,
		Factions: []Faction{{ID: FactionRed, Name: "Red"}, {ID: FactionBlue, Name: "Blue"}},
		Weapons:  []WeaponStats{WeaponRifle, WeaponCannon, WeaponLaser},
	}
	for _, side := range []struct {
		faction FactionID
		prefix  string
		x       int
	}{
		{FactionRed, "R", 1},
		{FactionBlue, "B", defaultGridWidth - 2},
	} {
		s.Units = append(s.Units,
			UnitConfig{
				Label: side.prefix + "0", Sprite: "trooper", Faction: side.faction, X: side.x, Y: 2,
				HP: 60, Armor: 20, Energy: 128, EnergyRegen: 6, MoveRange: 3, MoveCost: 4, VisionRange: 6,
				Evasion: 15, Scale: 0.8, Weapons: []string{"rifle", "laser"},
				Dodge: Capability{Cost: 8, Magnitude: 25},
			},
			UnitConfig{
				Label: side.prefix + "1", Sprite: "medic", Faction: side.faction, X: side.x, Y: 4,
				HP: 45, Armor: 10, Energy: 128, EnergyRegen: 8, MoveRange: 4, MoveCost: 3, VisionRange: 5,
				Evasion: 20, Scale: 0.7, Weapons: []string{"laser"},
				Dodge: Capability{Cost: 6, Magnitude: 20},
				Heal:  Capability{Cost: 12, Magnitude: 15},
			},
			UnitConfig{
				Label: side.prefix + "2", Sprite: "heavy", Faction: side.faction, X: side.x, Y: 6,
				HP: 90, Armor: 40, Energy: 160, EnergyRegen: 5, MoveRange: 2, MoveCost: 8, VisionRange: 7,
				Evasion: 5, Scale: 1.0, Weapons: []string{"cannon", "rifle"},
				Dodge:  Capability{Cost: 14, Magnitude: 10},
				Repair: Capability{Cost: 10, Magnitude: 12},
			},
		)
	}
	return s
}
