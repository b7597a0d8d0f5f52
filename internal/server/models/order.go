package models

import (
	"encoding/json"
	"time"
)

// Order is an order accepted from a terminal. ClientRef is the terminal's
// own id for it; a repeated delivery with the same ClientRef maps to the
// same Order.
type Order struct {
	ID        string
	UserID    string
	ClientRef string
	Payload   json.RawMessage
	CreatedAt time.Time
}
