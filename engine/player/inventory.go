package player

// Stack is one inventory line.
type Stack struct {
	ItemID string `json:"item"`
	Qty    int    `json:"qty"`
}

// Inventory is an ordered list of item stacks. First-acquired items stay
// first. It satisfies actor.Bag.
type Inventory struct {
	stacks []Stack
}

// Count returns how many of an item are held.
func (inv *Inventory) Count(itemID string) int {
	for _, s := range inv.stacks {
		if s.ItemID == itemID {
			return s.Qty
		}
	}
	return 0
}

// Add puts qty items in the inventory.
func (inv *Inventory) Add(itemID string, qty int) {
	if qty <= 0 || itemID == "" {
		return
	}
	for i := range inv.stacks {
		if inv.stacks[i].ItemID == itemID {
			inv.stacks[i].Qty += qty
			return
		}
	}
	inv.stacks = append(inv.stacks, Stack{ItemID: itemID, Qty: qty})
}

// Remove takes qty items out. It fails without side effects when fewer are
// held.
func (inv *Inventory) Remove(itemID string, qty int) bool {
	if qty <= 0 {
		return false
	}
	for i := range inv.stacks {
		if inv.stacks[i].ItemID != itemID {
			continue
		}
		if inv.stacks[i].Qty < qty {
			return false
		}
		inv.stacks[i].Qty -= qty
		if inv.stacks[i].Qty == 0 {
			inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
		}
		return true
	}
	return false
}

// Stacks returns a copy of the inventory lines in order.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, len(inv.stacks))
	copy(out, inv.stacks)
	return out
}

// Len returns the number of distinct items.
func (inv *Inventory) Len() int { return len(inv.stacks) }
