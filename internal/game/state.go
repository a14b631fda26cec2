// Package game provides the run flow and the terminal game loop.
package game

// State represents the current screen of the terminal game.
type State int

const (
	// StateMap is the default mode where the player picks the next node.
	StateMap State = iota
	// StateBattle is active while a battle is being fought.
	StateBattle
	// StateShop lists upgrades while the player stands on the shop.
	StateShop
	// StateDeck is the deck editor.
	StateDeck
	// StateSummary shows the result of a finished run.
	StateSummary
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateMap:
		return "map"
	case StateBattle:
		return "battle"
	case StateShop:
		return "shop"
	case StateDeck:
		return "deck"
	case StateSummary:
		return "summary"
	default:
		return "unknown"
	}
}
