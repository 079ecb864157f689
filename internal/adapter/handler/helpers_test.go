package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/core/service"
)

type memoryRepo struct {
	mu      sync.Mutex
	state   domain.State
	saves   int
	saveErr error
}

func (m *memoryRepo) Load(ctx context.Context) (domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *memoryRepo) Save(ctx context.Context, state domain.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = state.Clone()
	return nil
}

func newTestStore(t *testing.T) (*service.StoreService, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{state: domain.DefaultState()}
	clock := func() time.Time { return time.Date(2024, 5, 17, 14, 3, 9, 0, time.Local) }
	svc, err := service.NewStoreService(context.Background(), repo, service.WithClock(clock))
	if err != nil {
		t.Fatalf("NewStoreService failed: %v", err)
	}
	return svc, repo
}
