package models

import (
	"encoding/json"
	"fmt"
)

// OrderStatus is the delivery state of a queued order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSynced  OrderStatus = "synced"
	OrderStatusFailed  OrderStatus = "failed"
)

// DefaultMaxRetries is the number of failed delivery attempts after which a
// pending order is parked as failed.
const DefaultMaxRetries = 3

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusSynced, OrderStatusFailed:
		return true
	}
	return false
}

// ParseOrderStatus converts user input (e.g. a REPL argument) into a status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// QueuedOrder is an order captured on the terminal that has not necessarily
// reached the server yet.
type QueuedOrder struct {
	// ID is a UUIDv7 generated at enqueue time. It is also sent to the server
	// as the client reference of every delivery attempt.
	ID string `json:"id"`

	// Payload is the order body exactly as submitted. It is never inspected.
	Payload json.RawMessage `json:"payload"`

	// EnqueuedAt is the capture time in epoch milliseconds.
	EnqueuedAt int64 `json:"enqueuedAt"`

	Status     OrderStatus `json:"status"`
	RetryCount int         `json:"retryCount"`

	// SyncedAt is set (epoch milliseconds) iff Status is synced.
	SyncedAt *int64 `json:"syncedAt,omitempty"`

	// LastError holds the message of the most recent failed attempt.
	LastError string `json:"lastError,omitempty"`

	// ServerID is the identifier the server returned on delivery.
	ServerID string `json:"serverId,omitempty"`
}

// NewQueuedOrder returns a pending order with zero retries.
func NewQueuedOrder(id string, payload json.RawMessage, enqueuedAt int64) *QueuedOrder {
	return &QueuedOrder{
		ID:         id,
		Payload:    payload,
		EnqueuedAt: enqueuedAt,
		Status:     OrderStatusPending,
	}
}
