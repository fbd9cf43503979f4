// Package command drives player action selection through numbered menus read
// from a bounded-integer input provider.
package command

// Handler identifiers mapping menu entries to combat actions.
const (
	HandlerAttack = "attack"
	HandlerSkill  = "skill"
	HandlerDefend = "defend"
	HandlerMove   = "move"
	HandlerItem   = "item"
	HandlerFlee   = "flee"
)

// Command defines one entry of the top-level battle menu.
type Command struct {
	// Name is the label shown to the player.
	Name string
	// Help is the short description printed next to the label.
	Help string
	// Handler maps to the combat action built when the entry is chosen.
	Handler string
}

// BuiltinCommands returns the battle menu in display order.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "Attack", Help: "Strike one opponent", Handler: HandlerAttack},
		{Name: "Skill", Help: "Use a known skill", Handler: HandlerSkill},
		{Name: "Defend", Help: "Guard and recover stamina", Handler: HandlerDefend},
		{Name: "Move", Help: "Switch between the front and back line", Handler: HandlerMove},
		{Name: "Item", Help: "Use a consumable", Handler: HandlerItem},
		{Name: "Flee", Help: "Attempt to escape", Handler: HandlerFlee},
	}
}
