package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/dbx"
)

const orderColumns = `id, payload, enqueued_at, status, retry_count, synced_at, last_error, server_id`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*models.QueuedOrder, error) {
	var (
		o        models.QueuedOrder
		status   string
		payload  []byte
		syncedAt sql.NullInt64
	)
	if err := s.Scan(&o.ID, &payload, &o.EnqueuedAt, &status, &o.RetryCount, &syncedAt, &o.LastError, &o.ServerID); err != nil {
		return nil, err
	}
	o.Payload = payload
	o.Status = models.OrderStatus(status)
	if syncedAt.Valid {
		v := syncedAt.Int64
		o.SyncedAt = &v
	}
	return &o, nil
}

func nullableMillis(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func (r *SQLiteRepository) Insert(ctx context.Context, o *models.QueuedOrder) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		o.ID, []byte(o.Payload), o.EnqueuedAt, string(o.Status), o.RetryCount,
		nullableMillis(o.SyncedAt), o.LastError, o.ServerID)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", o.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", o.ID, common.ErrDuplicateKey)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.QueuedOrder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return o, nil
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]*models.QueuedOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = ? ORDER BY enqueued_at, id`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to select %s orders: %w", status, err)
	}
	defer rows.Close()

	result := []*models.QueuedOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		result = append(result, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE status = ?`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s orders: %w", status, err)
	}
	return n, nil
}

// execOne runs a single-row statement and maps "no row matched" to ErrNotFound.
func (r *SQLiteRepository) execOne(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, syncedAt *int64) error {
	return r.execOne(ctx, id, `UPDATE orders SET status = ?, synced_at = ? WHERE id = ?`,
		string(status), nullableMillis(syncedAt), id)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, serverID string, syncedAt int64) error {
	return r.execOne(ctx, id, `
		UPDATE orders
		SET status = 'synced', synced_at = ?, server_id = ?, last_error = ''
		WHERE id = ?`, syncedAt, serverID, id)
}

func (r *SQLiteRepository) SetRetryState(ctx context.Context, id string, retryCount int, status models.OrderStatus, lastError string) error {
	return r.execOne(ctx, id, `
		UPDATE orders
		SET retry_count = ?, status = ?, last_error = ?, synced_at = NULL
		WHERE id = ?`, retryCount, string(status), lastError, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteWithStatus(ctx context.Context, id string, status models.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ? AND status = ?`, id, string(status))
	if err != nil {
		return false, fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (models.QueueStats, error) {
	var s models.QueueStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'synced'  THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed'  THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM orders`).Scan(&s.Pending, &s.Synced, &s.Failed, &s.Total)
	if err != nil {
		return models.QueueStats{}, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return s, nil
}
