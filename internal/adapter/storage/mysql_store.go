package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/store-manager/internal/core/domain"
)

// snapshotRowID is the primary key of the single row holding the snapshot.
const snapshotRowID = 1

// MySQLStore keeps the whole snapshot document in one row of store_snapshot.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (m *MySQLStore) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS store_snapshot (
			id         TINYINT UNSIGNED NOT NULL PRIMARY KEY,
			payload    JSON NOT NULL,
			version    BIGINT UNSIGNED NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create store_snapshot: %w", err)
	}
	return nil
}

func (m *MySQLStore) Load(ctx context.Context) (domain.State, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM store_snapshot WHERE id = ?`, snapshotRowID,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultState(), nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("query snapshot: %w", err)
	}

	state, err := decodeState(payload)
	if err != nil {
		return domain.State{}, fmt.Errorf("store_snapshot row %d: %w", snapshotRowID, err)
	}
	return state, nil
}

// Save upserts the snapshot row in a single statement and bumps its version.
func (m *MySQLStore) Save(ctx context.Context, state domain.State) error {
	payload, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO store_snapshot (id, payload, version, updated_at)
		VALUES (?, ?, 1, NOW())
		ON DUPLICATE KEY UPDATE
			payload = VALUES(payload), version = version + 1, updated_at = NOW()`,
		snapshotRowID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Version returns how many times the snapshot row has been written.
func (m *MySQLStore) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.db.QueryRowContext(ctx, `
		SELECT version FROM store_snapshot WHERE id = ?`, snapshotRowID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query snapshot version: %w", err)
	}
	return version, nil
}
