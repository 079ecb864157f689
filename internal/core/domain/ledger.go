package domain

import "github.com/shopspring/decimal"

// Ledger holds the cash balance. It applies no floor of its own; callers decide
// when a debit is allowed.
type Ledger struct {
	balance decimal.Decimal
}

func NewLedger(balance decimal.Decimal) *Ledger {
	return &Ledger{balance: balance}
}

func (l *Ledger) Credit(amount decimal.Decimal) {
	l.balance = l.balance.Add(amount)
}

func (l *Ledger) Debit(amount decimal.Decimal) {
	l.balance = l.balance.Sub(amount)
}

// Covers reports whether amount can be paid without exceeding the balance.
func (l *Ledger) Covers(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(l.balance)
}

func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}
