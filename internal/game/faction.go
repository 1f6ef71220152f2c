package game

// FactionID is the numeric id of a faction. Units reference factions by id.
type FactionID int

// Faction is a side in the battle.
type Faction struct {
	ID   FactionID `json:"id" mapstructure:"id"`
	Name string    `json:"name" mapstructure:"name"`
}

// Controller says where a unit's requests come from.
type Controller int

const (
	ControllerNPC    Controller = iota // requests come from the decision policy
	ControllerPlayer                   // requests come from outside (input, socket)
)

func (c Controller) String() string {
	switch c {
	case ControllerNPC:
		return "npc"
	case ControllerPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// ParseController accepts "npc" or "player". Anything else is NPC.
func ParseController(s string) Controller {
	if s == "player" {
		return ControllerPlayer
	}
	return ControllerNPC
}
