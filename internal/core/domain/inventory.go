package domain

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Item struct {
	Price    decimal.Decimal
	Quantity int
}

// NormalizeName returns the inventory key for name.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// Inventory maps normalized item names to stock on hand. It never holds an
// entry with a zero quantity.
type Inventory struct {
	items map[string]Item
}

// NewInventory copies items, normalizing names. Entries whose names collide
// after normalization are merged in lexical order of the original names: the
// first keeps its price and the quantities add up.
func NewInventory(items map[string]Item) *Inventory {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	inv := &Inventory{items: make(map[string]Item, len(items))}
	for _, name := range names {
		item := items[name]
		if item.Quantity <= 0 {
			continue
		}
		key := NormalizeName(name)
		if existing, ok := inv.items[key]; ok {
			if item.Quantity > math.MaxInt-existing.Quantity {
				existing.Quantity = math.MaxInt
			} else {
				existing.Quantity += item.Quantity
			}
			item = existing
		}
		inv.items[key] = item
	}
	return inv
}

// AddStock increases the quantity of name, creating the item at price if it is
// not stocked yet. The price of an existing item is left untouched.
func (inv *Inventory) AddStock(name string, price decimal.Decimal, quantity int) error {
	if quantity <= 0 {
		return Validationf("quantity must be positive, got %d", quantity)
	}
	if price.IsNegative() {
		return Validationf("price must not be negative, got %s", price)
	}

	key := NormalizeName(name)
	if item, ok := inv.items[key]; ok {
		if quantity > math.MaxInt-item.Quantity {
			return Validationf("quantity %d would exceed the stock limit for %s", quantity, key)
		}
		item.Quantity += quantity
		inv.items[key] = item
		return nil
	}
	inv.items[key] = Item{Price: price, Quantity: quantity}
	return nil
}

// RemoveStock decreases the quantity of name and drops the item once it reaches zero.
func (inv *Inventory) RemoveStock(name string, quantity int) error {
	if quantity <= 0 {
		return Validationf("quantity must be positive, got %d", quantity)
	}

	key := NormalizeName(name)
	item, ok := inv.items[key]
	if !ok {
		return NotFound(key)
	}
	if quantity > item.Quantity {
		return InsufficientStock(key)
	}

	item.Quantity -= quantity
	if item.Quantity == 0 {
		delete(inv.items, key)
		return nil
	}
	inv.items[key] = item
	return nil
}

func (inv *Inventory) Get(name string) (Item, bool) {
	item, ok := inv.items[NormalizeName(name)]
	return item, ok
}

func (inv *Inventory) Len() int {
	return len(inv.items)
}

// Names returns the stocked item names in lexical order.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.items))
	for name := range inv.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the stock that callers may keep or modify freely.
func (inv *Inventory) Snapshot() map[string]Item {
	out := make(map[string]Item, len(inv.items))
	for name, item := range inv.items {
		out[name] = item
	}
	return out
}
