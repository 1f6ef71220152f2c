package game

// Pair is a (current, max) snapshot of a ledger.
type Pair struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

func pairOf(l Ledger) Pair { return Pair{Current: l.Current(), Max: l.Max()} }

// UnitView is the per-unit snapshot handed to renderers and spectators.
type UnitView struct {
	ID         UnitID    `json:"id"`
	Label      string    `json:"label"`
	Sprite     string    `json:"sprite"`
	Faction    FactionID `json:"faction"`
	Controller string    `json:"controller"`
	Pos        GridPos   `json:"pos"`
	Scale      float64   `json:"scale"`
	HP         Pair      `json:"hp"`
	Armor      Pair      `json:"armor"`
	Energy     Pair      `json:"energy"`
	Ammo       [3]int    `json:"ammo"` // -1 for an empty slot
	Evading    bool      `json:"evading"`
	Pending    string    `json:"pending,omitempty"`
}

// View returns the unit's snapshot as of tick.
func (u *Unit) View(tick int) UnitView {
	v := UnitView{
		ID:         u.id,
		Label:      u.label,
		Sprite:     u.sprite,
		Faction:    u.faction,
		Controller: u.controller.String(),
		Pos:        u.pos,
		Scale:      u.scale,
		HP:         pairOf(u.HP),
		Armor:      pairOf(u.Armor),
		Energy:     pairOf(u.Energy),
		Evading:    u.Evading(tick),
	}
	for i, w := range u.weapons {
		if w == nil {
			v.Ammo[i] = -1
			continue
		}
		v.Ammo[i] = w.Ammo()
	}
	if req, ok := u.Pending(); ok {
		v.Pending = req.String()
	}
	return v
}

// Views returns the snapshot of every living unit, in handle order.
func (w *World) Views() []UnitView {
	living := w.Living()
	out := make([]UnitView, 0, len(living))
	for _, u := range living {
		out = append(out, u.View(w.tick))
	}
	return out
}

// Snapshot is a whole-world view for spectators and recorders.
type Snapshot struct {
	Tick     int        `json:"tick"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	TileSize int        `json:"tileSize"`
	Factions []Faction  `json:"factions"`
	Units    []UnitView `json:"units"`
}

// Snapshot captures the current world state.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Tick:     w.tick,
		Width:    w.grid.Width,
		Height:   w.grid.Height,
		TileSize: w.grid.TileSize,
		Factions: w.Factions(),
		Units:    w.Views(),
	}
}
