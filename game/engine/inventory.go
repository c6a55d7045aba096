package engine

import "github.com/wricardo/fliplabyrinth/game/level"

// Inventory holds collected keys, weapons and items, unique by id.
// Entries keep pickup order so the first weapon collected is the one used.
type Inventory struct {
	items []Item
}

// NewInventory returns an empty inventory
func NewInventory() *Inventory {
	return &Inventory{}
}

// Add stores item unless an entry with the same id exists. It reports whether item was added.
func (inv *Inventory) Add(item Item) bool {
	if inv.Has(item.ID) {
		return false
	}
	inv.items = append(inv.items, item)
	return true
}

// Has reports whether an entry with id is held
func (inv *Inventory) Has(id string) bool {
	for _, it := range inv.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// HasKey reports whether a key of color is held
func (inv *Inventory) HasKey(color string) bool {
	for _, it := range inv.items {
		if it.Kind == level.KindKey && it.Color == color {
			return true
		}
	}
	return false
}

// HasWeapon reports whether any weapon is held
func (inv *Inventory) HasWeapon() bool {
	_, ok := inv.Weapon()
	return ok
}

// Weapon returns the first weapon collected
func (inv *Inventory) Weapon() (Item, bool) {
	for _, it := range inv.items {
		if it.Kind == level.KindWeapon {
			return it, true
		}
	}
	return Item{}, false
}

// Remove drops the entry with id. It reports whether something was removed.
func (inv *Inventory) Remove(id string) bool {
	for i, it := range inv.items {
		if it.ID == id {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return true
		}
	}
	return false
}

// Reset clears all entries
func (inv *Inventory) Reset() {
	inv.items = nil
}

// Size returns the number of entries
func (inv *Inventory) Size() int {
	return len(inv.items)
}

// Items returns a copy of the entries
func (inv *Inventory) Items() []Item {
	out := make([]Item, len(inv.items))
	copy(out, inv.items)
	return out
}
