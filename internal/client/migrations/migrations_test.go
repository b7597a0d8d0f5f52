package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUp_CreatesSchemaAndIsIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, db))
	require.NoError(t, Up(ctx, db))

	for _, name := range []string{"orders", "cached_users", "cache", "idx_orders_status", "idx_orders_enqueued_at"} {
		var n int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = ?`, name).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, name)
	}
}

func TestOrdersTable_SyncedAtConstraint(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, Up(ctx, db))

	_, err := db.ExecContext(ctx, `INSERT INTO orders (id, payload, enqueued_at, status, synced_at) VALUES ('a', x'7b7d', 1, 'synced', NULL)`)
	require.Error(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO orders (id, payload, enqueued_at, status, synced_at) VALUES ('b', x'7b7d', 1, 'pending', 5)`)
	require.Error(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO orders (id, payload, enqueued_at, status) VALUES ('c', x'7b7d', 1, 'lost')`)
	require.Error(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO orders (id, payload, enqueued_at, status, synced_at) VALUES ('d', x'7b7d', 1, 'synced', 2)`)
	require.NoError(t, err)
}
