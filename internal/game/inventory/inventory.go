package inventory

// Inventory is an ordered, mutable list of carried items. The same Item value
// may appear several times; each entry is one unit.
type Inventory struct {
	items []Item
}

// New creates an Inventory holding items in order.
func New(items ...Item) *Inventory {
	inv := &Inventory{}
	for _, it := range items {
		inv.Add(it)
	}
	return inv
}

// Add appends item. nil items are ignored.
func (inv *Inventory) Add(item Item) {
	if item == nil {
		return
	}
	inv.items = append(inv.items, item)
}

// Remove deletes the first entry equal to item.
//
// Postcondition: returns true iff an entry was removed; order of the
// remaining entries is preserved.
func (inv *Inventory) Remove(item Item) bool {
	for i, it := range inv.items {
		if it == item {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether item has at least one entry.
func (inv *Inventory) Contains(item Item) bool {
	for _, it := range inv.items {
		if it == item {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (inv *Inventory) Len() int { return len(inv.items) }

// Items returns a copy of the entries in order.
func (inv *Inventory) Items() []Item {
	out := make([]Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Consumables returns the consumable entries in order, one per unit.
func (inv *Inventory) Consumables() []*Consumable {
	var out []*Consumable
	for _, it := range inv.items {
		if c, ok := it.(*Consumable); ok {
			out = append(out, c)
		}
	}
	return out
}

// Stack is one consumable with the number of units carried.
type Stack struct {
	Item  *Consumable
	Count int
}

// ConsumableStacks groups identical consumables, ordered by first appearance.
func (inv *Inventory) ConsumableStacks() []Stack {
	var out []Stack
	index := make(map[*Consumable]int)
	for _, c := range inv.Consumables() {
		if i, ok := index[c]; ok {
			out[i].Count++
			continue
		}
		index[c] = len(out)
		out = append(out, Stack{Item: c, Count: 1})
	}
	return out
}
