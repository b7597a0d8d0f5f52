// Package orders persists queued orders in the terminal's SQLite store.
//
// The Repository is bound to a dbx.DBTX, so the same code runs against the
// pool or inside a transaction opened by dbx.WithTx. Missing rows surface as
// common.ErrNotFound and id collisions on insert as common.ErrDuplicateKey.
//
// Typical usage:
//
//	repo := orders.NewSQLiteRepository(db)
//	_ = repo.Insert(ctx, order)
//	pending, _ := repo.ListByStatus(ctx, models.OrderStatusPending)
//	_ = repo.MarkSynced(ctx, order.ID, serverID, now)
package orders
