package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLedger_CreditDebit(t *testing.T) {
	l := NewLedger(decimal.NewFromInt(100))

	l.Credit(decimal.RequireFromString("0.10"))
	l.Credit(decimal.RequireFromString("0.20"))
	l.Debit(decimal.RequireFromString("0.30"))

	if !l.Balance().Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", l.Balance())
	}
}

func TestLedger_DebitMayGoNegative(t *testing.T) {
	l := NewLedger(decimal.NewFromInt(5))
	l.Debit(decimal.NewFromInt(10))

	if !l.Balance().Equal(decimal.NewFromInt(-5)) {
		t.Errorf("expected balance -5, got %s", l.Balance())
	}
}

func TestLedger_Covers(t *testing.T) {
	l := NewLedger(decimal.NewFromInt(50))

	if !l.Covers(decimal.NewFromInt(50)) {
		t.Error("expected exact balance to be covered")
	}
	if l.Covers(decimal.NewFromInt(51)) {
		t.Error("expected amount above balance to be rejected")
	}
}

func TestTransactionLog_PreservesOrder(t *testing.T) {
	log := NewTransactionLog(nil, nil)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

	log.AppendSale(NewTransaction("a", decimal.NewFromInt(1), 1, at))
	log.AppendSale(NewTransaction("b", decimal.NewFromInt(2), 3, at))
	log.AppendPurchase(NewTransaction("c", decimal.NewFromInt(4), 2, at))

	sales := log.Sales()
	if len(sales) != 2 || sales[0].Item != "a" || sales[1].Item != "b" {
		t.Fatalf("unexpected sales order: %+v", sales)
	}
	if !sales[1].Total.Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected total 6, got %s", sales[1].Total)
	}
	if sales[0].Time != "2024-03-01 09:30:00" {
		t.Errorf("unexpected time format %q", sales[0].Time)
	}

	sales[0].Item = "mutated"
	if log.Sales()[0].Item != "a" {
		t.Error("reader mutation leaked into the log")
	}

	if got := log.Purchases(); len(got) != 1 || got[0].Item != "c" {
		t.Errorf("unexpected purchases: %+v", got)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		kind error
		msg  string
	}{
		{ItemNotAvailable("widget"), ErrItemNotAvailable, "Widget is not available in the store"},
		{InsufficientStock("widget"), ErrInsufficientStock, "Not enough widget available in the store"},
		{InsufficientFunds("widget"), ErrInsufficientFunds, "Not enough money to purchase widget"},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.kind) {
			t.Errorf("%q: expected kind %v", tt.msg, tt.kind)
		}
		if got := Message(tt.err); got != tt.msg {
			t.Errorf("expected message %q, got %q", tt.msg, got)
		}
	}
}

func TestPersistenceError_Unwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("save snapshot", cause)

	if !errors.Is(err, ErrPersistence) || !errors.Is(err, cause) {
		t.Errorf("expected both ErrPersistence and cause in chain, got: %v", err)
	}
	if Message(err) != "save snapshot" {
		t.Errorf("unexpected message %q", Message(err))
	}
}
