package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/client/repositories/orders"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/dbx"
)

// SaveOrder inserts a new order. An existing id yields common.ErrDuplicateKey.
func (s *Store) SaveOrder(ctx context.Context, o *models.QueuedOrder) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order id is required: %w", common.ErrValidation)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("order %s has status %q: %w", o.ID, o.Status, common.ErrValidation)
	}
	return s.withDB(func() error {
		return s.orders.Insert(ctx, o)
	})
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.QueuedOrder, error) {
	var out *models.QueuedOrder
	err := s.withDB(func() (err error) {
		out, err = s.orders.GetByID(ctx, id)
		return err
	})
	return out, err
}

// GetPendingOrders returns every pending order, oldest first.
func (s *Store) GetPendingOrders(ctx context.Context) ([]*models.QueuedOrder, error) {
	return s.GetOrdersByStatus(ctx, models.OrderStatusPending)
}

func (s *Store) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]*models.QueuedOrder, error) {
	var out []*models.QueuedOrder
	err := s.withDB(func() (err error) {
		out, err = s.orders.ListByStatus(ctx, status)
		return err
	})
	return out, err
}

func (s *Store) CountOrders(ctx context.Context, status models.OrderStatus) (int, error) {
	var n int
	err := s.withDB(func() (err error) {
		n, err = s.orders.CountByStatus(ctx, status)
		return err
	})
	return n, err
}

// UpdateOrderStatus changes status and synced_at together. A synced status
// with a nil syncedAt is stamped with the store clock; any other status
// clears synced_at.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, syncedAt *time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("status %q: %w", status, common.ErrValidation)
	}

	var at *int64
	if status == models.OrderStatusSynced {
		t := s.now()
		if syncedAt != nil {
			t = *syncedAt
		}
		ms := s.millis(t)
		at = &ms
	}

	return s.withDB(func() error {
		return s.orders.UpdateStatus(ctx, id, status, at)
	})
}

// MarkSynced records a successful delivery together with the server id.
func (s *Store) MarkSynced(ctx context.Context, id, serverID string, at time.Time) error {
	return s.withDB(func() error {
		return s.orders.MarkSynced(ctx, id, serverID, s.millis(at))
	})
}

// RecordFailure charges one failed attempt to a pending order: retry_count
// is incremented, the cause is kept as last_error, and once the count reaches
// maxRetries the order becomes failed. The updated order is returned.
// Orders that are no longer pending are returned unchanged.
func (s *Store) RecordFailure(ctx context.Context, id, cause string, maxRetries int) (*models.QueuedOrder, error) {
	var out *models.QueuedOrder
	err := s.withDB(func() (err error) {
		out, err = dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.QueuedOrder, error) {
			repo := orders.NewSQLiteRepository(tx)

			o, err := repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if o.Status != models.OrderStatusPending {
				return o, nil
			}

			o.RetryCount++
			o.LastError = cause
			if o.RetryCount >= maxRetries {
				o.Status = models.OrderStatusFailed
			}

			if err := repo.SetRetryState(ctx, id, o.RetryCount, o.Status, o.LastError); err != nil {
				return nil, err
			}
			return o, nil
		})
		return err
	})
	return out, err
}

// DeleteOrder removes an order. Deleting a missing id succeeds.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	return s.withDB(func() error {
		return s.orders.Delete(ctx, id)
	})
}

// DeleteFailedOrders removes the given orders in one transaction, skipping
// any that are no longer failed, and returns how many were deleted.
func (s *Store) DeleteFailedOrders(ctx context.Context, ids []string) (int, error) {
	var n int
	err := s.withDB(func() (err error) {
		n, err = dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (int, error) {
			repo := orders.NewSQLiteRepository(tx)
			deleted := 0
			for _, id := range ids {
				ok, err := repo.DeleteWithStatus(ctx, id, models.OrderStatusFailed)
				if err != nil {
					return 0, err
				}
				if ok {
					deleted++
				}
			}
			return deleted, nil
		})
		return err
	})
	return n, err
}

// GetStats counts orders per status in a single consistent snapshot.
func (s *Store) GetStats(ctx context.Context) (models.QueueStats, error) {
	var out models.QueueStats
	err := s.withDB(func() (err error) {
		out, err = s.orders.Stats(ctx)
		return err
	})
	return out, err
}
