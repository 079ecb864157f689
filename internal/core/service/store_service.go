package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/port"
)

type BalanceCommand string

const (
	CommandAdd      BalanceCommand = "add"
	CommandSubtract BalanceCommand = "subtract"
)

type Option func(*StoreService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *StoreService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(s *StoreService) {
		if now != nil {
			s.now = now
		}
	}
}

// StoreService owns the store state. Every operation runs under one mutex and
// either commits and saves the full snapshot, or fails leaving state untouched.
type StoreService struct {
	mu        sync.Mutex
	repo      port.SnapshotRepository
	inventory *domain.Inventory
	ledger    *domain.Ledger
	history   *domain.TransactionLog
	logger    *zap.Logger
	now       func() time.Time
}

// NewStoreService loads the saved state from repo and returns a ready service.
func NewStoreService(ctx context.Context, repo port.SnapshotRepository, opts ...Option) (*StoreService, error) {
	s := &StoreService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := repo.Load(ctx)
	if err != nil {
		return nil, domain.Persistence("could not load store data", err)
	}
	s.inventory = domain.NewInventory(state.Inventory)
	s.ledger = domain.NewLedger(state.AccountBalance)
	s.history = domain.NewTransactionLog(state.SalesHistory, state.PurchaseHistory)

	s.logger.Info("store loaded",
		zap.Int("items", s.inventory.Len()),
		zap.Stringer("balance", s.ledger.Balance()),
		zap.Int("sales", len(state.SalesHistory)),
		zap.Int("purchases", len(state.PurchaseHistory)))
	return s, nil
}

// AdjustBalance credits ("add") or debits ("subtract") amount. Any other command
// leaves the balance unchanged. The snapshot is saved in every case.
func (s *StoreService) AdjustBalance(ctx context.Context, command string, amount int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := decimal.NewFromInt(amount)
	switch BalanceCommand(strings.ToLower(command)) {
	case CommandAdd:
		s.ledger.Credit(delta)
	case CommandSubtract:
		s.ledger.Debit(delta)
	default:
		s.logger.Debug("unknown balance command ignored", zap.String("command", command))
	}

	balance := s.ledger.Balance()
	if err := s.persist(ctx); err != nil {
		return balance, err
	}

	s.logger.Info("balance adjusted",
		zap.String("command", command),
		zap.Int64("amount", amount),
		zap.Stringer("balance", balance))
	return balance, nil
}

// RecordSale sells quantity of itemName at price and credits the proceeds.
func (s *StoreService) RecordSale(ctx context.Context, itemName string, price decimal.Decimal, quantity int) (domain.Transaction, error) {
	if err := validateLine(itemName, price, quantity); err != nil {
		return domain.Transaction{}, err
	}
	name := domain.NormalizeName(itemName)

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.inventory.Get(name)
	if !ok {
		s.logger.Debug("sale rejected", zap.String("item", name), zap.String("reason", "not available"))
		return domain.Transaction{}, domain.ItemNotAvailable(name)
	}
	if quantity > item.Quantity {
		s.logger.Debug("sale rejected",
			zap.String("item", name),
			zap.Int("requested", quantity),
			zap.Int("on_hand", item.Quantity))
		return domain.Transaction{}, domain.InsufficientStock(name)
	}

	if err := s.inventory.RemoveStock(name, quantity); err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.NewTransaction(name, price, quantity, s.now())
	s.ledger.Credit(tx.Total)
	s.history.AppendSale(tx)

	if err := s.persist(ctx); err != nil {
		return tx, err
	}

	s.logger.Info("sale recorded",
		zap.String("item", name),
		zap.Int("quantity", quantity),
		zap.Stringer("total", tx.Total),
		zap.Stringer("balance", s.ledger.Balance()))
	return tx, nil
}

// RecordPurchase buys quantity of itemName at price if the balance covers it.
// A repeat purchase of a stocked item keeps the stored price.
func (s *StoreService) RecordPurchase(ctx context.Context, itemName string, price decimal.Decimal, quantity int) (domain.Transaction, error) {
	if err := validateLine(itemName, price, quantity); err != nil {
		return domain.Transaction{}, err
	}
	name := domain.NormalizeName(itemName)
	total := domain.LineTotal(price, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.Covers(total) {
		s.logger.Debug("purchase rejected",
			zap.String("item", name),
			zap.Stringer("total", total),
			zap.Stringer("balance", s.ledger.Balance()))
		return domain.Transaction{}, domain.InsufficientFunds(name)
	}

	if err := s.inventory.AddStock(name, price, quantity); err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.NewTransaction(name, price, quantity, s.now())
	s.ledger.Debit(tx.Total)
	s.history.AppendPurchase(tx)

	if err := s.persist(ctx); err != nil {
		return tx, err
	}

	s.logger.Info("purchase recorded",
		zap.String("item", name),
		zap.Int("quantity", quantity),
		zap.Stringer("total", tx.Total),
		zap.Stringer("balance", s.ledger.Balance()))
	return tx, nil
}

// History returns the sales and purchases, oldest first.
func (s *StoreService) History() (sales, purchases []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Sales(), s.history.Purchases()
}

func (s *StoreService) Inventory() map[string]domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.Snapshot()
}

func (s *StoreService) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance()
}

// State returns a copy of the full store state.
func (s *StoreService) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *StoreService) snapshot() domain.State {
	return domain.State{
		Inventory:       s.inventory.Snapshot(),
		AccountBalance:  s.ledger.Balance(),
		SalesHistory:    s.history.Sales(),
		PurchaseHistory: s.history.Purchases(),
	}
}

// persist must be called with s.mu held. A failed save keeps the in-memory
// mutation; the next successful save brings the repository back in line.
func (s *StoreService) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.snapshot()); err != nil {
		s.logger.Error("failed to save store snapshot", zap.Error(err))
		return domain.Persistence("could not save store data", err)
	}
	return nil
}

func validateLine(itemName string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(itemName) == "" {
		return domain.Validationf("item name is required")
	}
	if price.IsNegative() {
		return domain.Validationf("price must not be negative, got %s", price)
	}
	if quantity <= 0 {
		return domain.Validationf("quantity must be positive, got %d", quantity)
	}
	return nil
}
