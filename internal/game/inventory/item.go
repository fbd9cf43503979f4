// Package inventory provides the items an actor carries into battle:
// consumables that restore pools and equipment that modifies stats.
package inventory

import (
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Slot identifies an equipment slot. An actor holds at most one Equipment
// per slot.
type Slot string

const (
	SlotWeapon    Slot = "weapon"
	SlotHead      Slot = "head"
	SlotBody      Slot = "body"
	SlotAccessory Slot = "accessory"
)

var validSlots = map[Slot]struct{}{
	SlotWeapon:    {},
	SlotHead:      {},
	SlotBody:      {},
	SlotAccessory: {},
}

// slotDisplayNames maps every slot to its human-readable label.
var slotDisplayNames = map[Slot]string{
	SlotWeapon:    "Weapon",
	SlotHead:      "Head",
	SlotBody:      "Body",
	SlotAccessory: "Accessory",
}

// DisplayName returns the human-readable label for the slot, or the raw
// slot name if unknown.
func (s Slot) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	return string(s)
}

// Item is anything that can sit in an inventory.
type Item interface {
	ID() string
	Name() string
}

// Consumable restores fixed amounts of HP, MP and SP when used.
type Consumable struct {
	id        string
	name      string
	RestoreHP int
	RestoreMP int
	RestoreSP int
}

// NewConsumable creates a Consumable.
//
// Precondition: id and name must be non-empty; restore amounts >= 0.
func NewConsumable(id, name string, hp, mp, sp int) *Consumable {
	return &Consumable{id: id, name: name, RestoreHP: hp, RestoreMP: mp, RestoreSP: sp}
}

func (c *Consumable) ID() string   { return c.id }
func (c *Consumable) Name() string { return c.name }

// Equipment is an immutable stat modifier bound to a slot. It may grant
// extra skills while equipped.
type Equipment struct {
	id     string
	name   string
	Slot   Slot
	Delta  stats.Delta
	Grants []*skill.Skill
}

// NewEquipment creates an Equipment piece.
//
// Precondition: delta.Validate() == nil.
func NewEquipment(id, name string, slot Slot, delta stats.Delta, grants ...*skill.Skill) *Equipment {
	return &Equipment{id: id, name: name, Slot: slot, Delta: delta, Grants: grants}
}

func (e *Equipment) ID() string   { return e.id }
func (e *Equipment) Name() string { return e.name }
