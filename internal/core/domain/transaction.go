package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the local-time format of Transaction.Time.
const TimeLayout = "2006-01-02 15:04:05"

type Transaction struct {
	Item     string
	Price    decimal.Decimal
	Quantity int
	Total    decimal.Decimal
	Time     string
}

func NewTransaction(item string, price decimal.Decimal, quantity int, at time.Time) Transaction {
	return Transaction{
		Item:     item,
		Price:    price,
		Quantity: quantity,
		Total:    LineTotal(price, quantity),
		Time:     at.Format(TimeLayout),
	}
}

// LineTotal is price multiplied by quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// TransactionLog keeps sales and purchases in the order they were recorded.
// Records are never reordered or removed.
type TransactionLog struct {
	sales     []Transaction
	purchases []Transaction
}

func NewTransactionLog(sales, purchases []Transaction) *TransactionLog {
	return &TransactionLog{
		sales:     append([]Transaction(nil), sales...),
		purchases: append([]Transaction(nil), purchases...),
	}
}

func (l *TransactionLog) AppendSale(tx Transaction) {
	l.sales = append(l.sales, tx)
}

func (l *TransactionLog) AppendPurchase(tx Transaction) {
	l.purchases = append(l.purchases, tx)
}

// Sales returns a copy of the sales, oldest first.
func (l *TransactionLog) Sales() []Transaction {
	return append([]Transaction{}, l.sales...)
}

// Purchases returns a copy of the purchases, oldest first.
func (l *TransactionLog) Purchases() []Transaction {
	return append([]Transaction{}, l.purchases...)
}
