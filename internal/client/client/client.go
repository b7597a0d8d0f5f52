package client

import (
	"context"
	"encoding/json"
)

// OrderSubmitter delivers one order to the server and returns the id the
// server assigned to it. clientRef is the terminal-side order id; servers
// that understand it use it to recognize a repeated delivery.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, clientRef string, payload json.RawMessage) (string, error)
}

// Pinger reports whether the server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoginResult is the identity returned by a successful online login.
type LoginResult struct {
	UserID      string
	DisplayName string
}

type Client interface {
	OrderSubmitter
	Pinger
	// Login authenticates against the server and keeps the access token for
	// subsequent calls.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Close() error
}
