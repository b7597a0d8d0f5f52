package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/server/models"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MaxClientRefLen bounds the client reference accepted from terminals.
const MaxClientRefLen = 128

// OrderService accepts orders from terminals. An order delivered again with
// the same client reference is not stored twice; the first id is returned.
type OrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager) *OrderService {
	return &OrderService{db: db, repomanager: m}
}

func validatePayload(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty order", common.ErrValidation)
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("%w: order must be a JSON object", common.ErrValidation)
	}
	return nil
}

// Submit stores the order and returns its server id. Without a client
// reference the order cannot be recognized on replay and a fresh one is
// assigned.
func (s *OrderService) Submit(ctx context.Context, userID, clientRef string, payload []byte) (string, bool, error) {
	if err := validatePayload(payload); err != nil {
		return "", false, err
	}
	if len(clientRef) > MaxClientRefLen {
		return "", false, fmt.Errorf("%w: client reference longer than %d", common.ErrValidation, MaxClientRefLen)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", false, common.ErrorInternal
	}
	if clientRef == "" {
		clientRef = "srv-" + id.String()
	}

	order := &models.Order{
		ID:        id.String(),
		UserID:    userID,
		ClientRef: clientRef,
		Payload:   json.RawMessage(bytes.TrimSpace(payload)),
	}

	storedID, created, err := s.repomanager.Orders(s.db).Upsert(ctx, order)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return storedID, created, nil
}
