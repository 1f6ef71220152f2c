package game

import (
	"fmt"
	"strings"
)

// ActionKind tags an ActionRequest.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionAttack
	ActionDodge
	ActionHeal
	ActionRepair
	ActionWait
	actionKindCount // sentinel
)

// resolutionOrder is the fixed order in which the per-kind systems run each
// tick. Dodge after Attack means a dodge protects from the next tick's attacks.
var resolutionOrder = [actionKindCount]ActionKind{
	ActionMove, ActionAttack, ActionDodge, ActionHeal, ActionRepair, ActionWait,
}

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionDodge:
		return "dodge"
	case ActionHeal:
		return "heal"
	case ActionRepair:
		return "repair"
	case ActionWait:
		return "wait"
	default:
		return "unknown"
	}
}

// ParseActionKind is the inverse of String.
func ParseActionKind(s string) (ActionKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := ActionMove; k < actionKindCount; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ActionRequest is a unit's order for the current tick. Dir is meaningful for
// Move, Attack, Heal and Repair; Slot only for Attack.
type ActionRequest struct {
	Kind ActionKind
	Dir  Direction
	Slot WeaponSlot
}

func MoveRequest(d Direction) ActionRequest { return ActionRequest{Kind: ActionMove, Dir: d} }

func AttackRequest(d Direction, slot WeaponSlot) ActionRequest {
	return ActionRequest{Kind: ActionAttack, Dir: d, Slot: slot}
}

func DodgeRequest() ActionRequest { return ActionRequest{Kind: ActionDodge} }

func HealRequest(d Direction) ActionRequest { return ActionRequest{Kind: ActionHeal, Dir: d} }

func RepairRequest(d Direction) ActionRequest { return ActionRequest{Kind: ActionRepair, Dir: d} }

func WaitRequest() ActionRequest { return ActionRequest{Kind: ActionWait} }

// Directed reports whether the request carries a direction.
func (r ActionRequest) Directed() bool {
	switch r.Kind {
	case ActionMove, ActionAttack, ActionHeal, ActionRepair:
		return true
	}
	return false
}

// Validate checks that the variant's payload is well formed.
func (r ActionRequest) Validate() error {
	if r.Kind < ActionMove || r.Kind >= actionKindCount {
		return fmt.Errorf("%w: kind %d", ErrInvalidRequest, int(r.Kind))
	}
	if r.Directed() && !r.Dir.Valid() {
		return fmt.Errorf("%w: %s needs a direction", ErrInvalidRequest, r.Kind)
	}
	if r.Kind == ActionAttack && !r.Slot.Valid() {
		return fmt.Errorf("%w: weapon slot %d", ErrInvalidRequest, int(r.Slot))
	}
	return nil
}

func (r ActionRequest) String() string {
	switch r.Kind {
	case ActionAttack:
		return fmt.Sprintf("attack %s (%s)", r.Dir, r.Slot)
	case ActionMove, ActionHeal, ActionRepair:
		return fmt.Sprintf("%s %s", r.Kind, r.Dir)
	default:
		return r.Kind.String()
	}
}
