package repository

import (
	"context"
	"encoding/json"

	"snp/internal/model"
)

// TicketRepository persists ticket documents by key.
// Put is a full replace: writing an existing key overwrites the whole record.
type TicketRepository interface {
	Put(ctx context.Context, key string, t model.Ticket) (json.RawMessage, error)
	GetAll(ctx context.Context) (map[string]model.Ticket, error)
}
