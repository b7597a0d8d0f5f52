package orders

import (
	"context"

	"github.com/dmitrijs2005/posqueue/internal/server/models"
)

type Repository interface {
	// Upsert stores order unless an order with the same ClientRef exists.
	// It returns the id of the stored order and whether it was created now.
	Upsert(ctx context.Context, order *models.Order) (id string, created bool, err error)
	GetByClientRef(ctx context.Context, clientRef string) (*models.Order, error)
}
