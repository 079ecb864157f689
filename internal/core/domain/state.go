package domain

import "github.com/shopspring/decimal"

// DefaultBalance is the cash balance of a store with no saved snapshot.
var DefaultBalance = decimal.NewFromInt(25000)

// State is the persisted snapshot of the whole store.
type State struct {
	Inventory       map[string]Item
	AccountBalance  decimal.Decimal
	SalesHistory    []Transaction
	PurchaseHistory []Transaction
}

func DefaultState() State {
	return State{
		Inventory:       map[string]Item{},
		AccountBalance:  DefaultBalance,
		SalesHistory:    []Transaction{},
		PurchaseHistory: []Transaction{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Inventory:       make(map[string]Item, len(s.Inventory)),
		AccountBalance:  s.AccountBalance,
		SalesHistory:    append([]Transaction{}, s.SalesHistory...),
		PurchaseHistory: append([]Transaction{}, s.PurchaseHistory...),
	}
	for name, item := range s.Inventory {
		out.Inventory[name] = item
	}
	return out
}
