package orders

import (
	"context"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
)

// Repository describes persistence operations on queued orders.
type Repository interface {
	// Insert stores a new order. An existing id yields common.ErrDuplicateKey.
	Insert(ctx context.Context, o *models.QueuedOrder) error

	// GetByID returns one order or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.QueuedOrder, error)

	// ListByStatus returns orders with the given status, oldest first.
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]*models.QueuedOrder, error)

	// CountByStatus returns the number of orders with the given status.
	CountByStatus(ctx context.Context, status models.OrderStatus) (int, error)

	// UpdateStatus sets status and synced_at in one statement.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, syncedAt *int64) error

	// MarkSynced moves an order to synced and records the server id.
	MarkSynced(ctx context.Context, id, serverID string, syncedAt int64) error

	// SetRetryState overwrites the retry bookkeeping of an order.
	SetRetryState(ctx context.Context, id string, retryCount int, status models.OrderStatus, lastError string) error

	// Delete removes an order. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteWithStatus removes an order only if it still has the given
	// status and reports whether a row was deleted.
	DeleteWithStatus(ctx context.Context, id string, status models.OrderStatus) (bool, error)

	// Stats counts orders per status with a single query.
	Stats(ctx context.Context) (models.QueueStats, error)
}
