package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/store-manager/internal/adapter/storage"
	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/core/service"
)

const (
	itemName      = "stress-item"
	initialStock  = 20
	totalRequests = 50
	buyPrice      = 10
	sellPrice     = 15
)

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "store-stress-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	repo := storage.NewFileStore(filepath.Join(dir, storage.DefaultDataFile))
	store, err := service.NewStoreService(ctx, repo)
	if err != nil {
		log.Fatalf("failed to load store: %v", err)
	}

	if _, err := store.RecordPurchase(ctx, itemName, decimal.NewFromInt(buyPrice), initialStock); err != nil {
		log.Fatalf("failed to stock item: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent sales
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := store.RecordSale(ctx, itemName, decimal.NewFromInt(sellPrice), 1)
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d sales succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	// Verify the persisted snapshot, not just memory
	saved, err := repo.Load(ctx)
	if err != nil {
		log.Fatalf("failed to reload snapshot: %v", err)
	}

	if _, ok := saved.Inventory[itemName]; !ok {
		fmt.Println("PASS: Stock depleted and item removed")
	} else {
		fmt.Printf("FAIL: Expected item removed, got %d left\n", saved.Inventory[itemName].Quantity)
	}

	expected := expectedBalance(saved)
	fmt.Printf("Final Balance:    %s\n", saved.AccountBalance)
	if saved.AccountBalance.Equal(expected) {
		fmt.Println("PASS: Balance matches history")
	} else {
		fmt.Printf("FAIL: Expected balance %s, got %s\n", expected, saved.AccountBalance)
	}

	if len(saved.SalesHistory) == int(success) && len(saved.PurchaseHistory) == 1 {
		fmt.Println("PASS: History records every committed operation")
	} else {
		fmt.Printf("FAIL: Expected %d sales/1 purchase, got %d/%d\n",
			success, len(saved.SalesHistory), len(saved.PurchaseHistory))
	}
}

// expectedBalance replays the logs from the default opening balance.
func expectedBalance(s domain.State) decimal.Decimal {
	balance := domain.DefaultBalance
	for _, tx := range s.SalesHistory {
		balance = balance.Add(tx.Total)
	}
	for _, tx := range s.PurchaseHistory {
		balance = balance.Sub(tx.Total)
	}
	return balance
}
