package service_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/store-manager/internal/adapter/storage"
	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/core/service"
	"github.com/rl1809/store-manager/internal/port"
)

type backend struct {
	name    string
	open    func(t *testing.T) port.SnapshotRepository
	cleanup func()
}

func backends(t *testing.T) []backend {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/storemanager?parseTime=true"
	}

	dir := t.TempDir()
	redisKey := "test:integration:" + uuid.NewString()

	return []backend{
		{
			name: "file",
			open: func(t *testing.T) port.SnapshotRepository {
				return storage.NewFileStore(filepath.Join(dir, "data.json"))
			},
		},
		{
			name: "redis",
			open: func(t *testing.T) port.SnapshotRepository {
				rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
				if err := rdb.Ping(context.Background()).Err(); err != nil {
					t.Skipf("Redis not available: %v", err)
				}
				t.Cleanup(func() {
					rdb.Del(context.Background(), redisKey)
					rdb.Close()
				})
				return storage.NewRedisStore(rdb, redisKey)
			},
		},
		{
			name: "mysql",
			open: func(t *testing.T) port.SnapshotRepository {
				db, err := sql.Open("mysql", mysqlDSN)
				if err != nil {
					t.Skipf("MySQL not available: %v", err)
				}
				if err := db.Ping(); err != nil {
					t.Skipf("MySQL not available: %v", err)
				}
				t.Cleanup(func() {
					db.Exec(`DELETE FROM store_snapshot`)
					db.Close()
				})
				ms := storage.NewMySQLStore(db)
				if err := ms.EnsureSchema(context.Background()); err != nil {
					t.Fatalf("EnsureSchema failed: %v", err)
				}
				db.Exec(`DELETE FROM store_snapshot`)
				return ms
			},
		},
	}
}

func TestIntegration_ConcurrentSalesSurviveRestart(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			svc, err := service.NewStoreService(ctx, repo)
			if err != nil {
				t.Fatalf("NewStoreService failed: %v", err)
			}

			initialStock := 10
			if _, err := svc.RecordPurchase(ctx, "Integration Item", decimal.NewFromInt(4), initialStock); err != nil {
				t.Fatalf("purchase failed: %v", err)
			}

			var successCount atomic.Int32
			var wg sync.WaitGroup
			totalRequests := 20
			for i := 0; i < totalRequests; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.RecordSale(ctx, "integration item", decimal.NewFromInt(6), 1); err == nil {
						successCount.Add(1)
					}
				}()
			}
			wg.Wait()

			if successCount.Load() != int32(initialStock) {
				t.Errorf("expected %d successful sales, got %d", initialStock, successCount.Load())
			}

			// A fresh service over the same backend must see the committed state.
			reloaded, err := service.NewStoreService(ctx, repo)
			if err != nil {
				t.Fatalf("reload failed: %v", err)
			}

			want := domain.DefaultBalance.Sub(decimal.NewFromInt(40)).Add(decimal.NewFromInt(60))
			if !reloaded.Balance().Equal(want) {
				t.Errorf("expected balance %s after restart, got %s", want, reloaded.Balance())
			}
			if len(reloaded.Inventory()) != 0 {
				t.Errorf("expected empty inventory after restart, got %v", reloaded.Inventory())
			}
			sales, purchases := reloaded.History()
			if len(sales) != initialStock || len(purchases) != 1 {
				t.Errorf("expected %d sales and 1 purchase, got %d and %d", initialStock, len(sales), len(purchases))
			}
		})
	}
}

func TestIntegration_RejectedSaleLeavesBackendUntouched(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			svc, err := service.NewStoreService(ctx, repo)
			if err != nil {
				t.Fatalf("NewStoreService failed: %v", err)
			}
			if _, err := svc.AdjustBalance(ctx, "add", 100); err != nil {
				t.Fatalf("AdjustBalance failed: %v", err)
			}

			if _, err := svc.RecordSale(ctx, "ghost", decimal.NewFromInt(1), 1); err == nil {
				t.Fatal("expected sale of unknown item to fail")
			}

			saved, err := repo.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !saved.AccountBalance.Equal(decimal.NewFromInt(25100)) {
				t.Errorf("expected saved balance 25100, got %s", saved.AccountBalance)
			}
			if len(saved.SalesHistory) != 0 {
				t.Errorf("expected no saved sales, got %d", len(saved.SalesHistory))
			}
		})
	}
}

func TestIntegration_StockLimitKeepsFileLoadable(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewFileStore(filepath.Join(t.TempDir(), "data.json"))

	svc, err := service.NewStoreService(ctx, repo)
	if err != nil {
		t.Fatalf("NewStoreService failed: %v", err)
	}
	if _, err := svc.RecordPurchase(ctx, "widget", decimal.Zero, math.MaxInt); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := svc.RecordPurchase(ctx, "widget", decimal.Zero, 2); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}

	reloaded, err := service.NewStoreService(ctx, repo)
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if got := reloaded.Inventory()["widget"].Quantity; got != math.MaxInt {
		t.Errorf("expected quantity %d after restart, got %d", math.MaxInt, got)
	}
}
