package storage

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/rl1809/store-manager/internal/core/domain"
)

// number writes a decimal as a bare JSON number and reads either a number or
// a quoted decimal string.
type number decimal.Decimal

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

func (n *number) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = number(d)
	return nil
}

type snapshotDocument struct {
	Inventory       map[string]itemDocument `json:"inventory"`
	AccountBalance  *number                 `json:"account_balance"`
	SalesHistory    []transactionDocument   `json:"sales_history"`
	PurchaseHistory []transactionDocument   `json:"purchase_history"`
}

type itemDocument struct {
	Price    number `json:"price"`
	Quantity int    `json:"quantity"`
}

type transactionDocument struct {
	Item     string `json:"item"`
	Price    number `json:"price"`
	Quantity int    `json:"quantity"`
	Total    number `json:"total"`
	Time     string `json:"time"`
}

func encodeState(state domain.State) ([]byte, error) {
	balance := number(state.AccountBalance)
	doc := snapshotDocument{
		Inventory:       make(map[string]itemDocument, len(state.Inventory)),
		AccountBalance:  &balance,
		SalesHistory:    encodeTransactions(state.SalesHistory),
		PurchaseHistory: encodeTransactions(state.PurchaseHistory),
	}
	for name, item := range state.Inventory {
		doc.Inventory[name] = itemDocument{Price: number(item.Price), Quantity: item.Quantity}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// decodeState parses a snapshot document. Fields missing from the document
// fall back to their defaults one by one.
func decodeState(data []byte) (domain.State, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.State{}, fmt.Errorf("decode snapshot: %w", err)
	}

	state := domain.DefaultState()
	if doc.AccountBalance != nil {
		state.AccountBalance = decimal.Decimal(*doc.AccountBalance)
	}
	for name, item := range doc.Inventory {
		if item.Quantity < 0 {
			return domain.State{}, fmt.Errorf("decode snapshot: item %q has negative quantity %d", name, item.Quantity)
		}
		if item.Quantity == 0 {
			continue
		}
		key := domain.NormalizeName(name)
		if _, dup := state.Inventory[key]; dup {
			return domain.State{}, fmt.Errorf("decode snapshot: item %q appears more than once", key)
		}
		state.Inventory[key] = domain.Item{
			Price:    decimal.Decimal(item.Price),
			Quantity: item.Quantity,
		}
	}
	state.SalesHistory = decodeTransactions(doc.SalesHistory)
	state.PurchaseHistory = decodeTransactions(doc.PurchaseHistory)
	return state, nil
}

func encodeTransactions(txs []domain.Transaction) []transactionDocument {
	out := make([]transactionDocument, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionDocument{
			Item:     tx.Item,
			Price:    number(tx.Price),
			Quantity: tx.Quantity,
			Total:    number(tx.Total),
			Time:     tx.Time,
		})
	}
	return out
}

func decodeTransactions(docs []transactionDocument) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Transaction{
			Item:     d.Item,
			Price:    decimal.Decimal(d.Price),
			Quantity: d.Quantity,
			Total:    decimal.Decimal(d.Total),
			Time:     d.Time,
		})
	}
	return out
}
