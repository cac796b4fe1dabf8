package repository

import (
	"bytes"
	"context"
	"encoding/json"

	"snp/internal/infra"
	"snp/internal/model"

	"github.com/rs/zerolog/log"
)

type firebaseTicketRepo struct {
	client     *infra.FirebaseClient
	collection string
}

// NewFirebaseTicketRepository stores tickets under /{collection}/{key}.
func NewFirebaseTicketRepository(client *infra.FirebaseClient, collection string) TicketRepository {
	return &firebaseTicketRepo{client: client, collection: collection}
}

func (r *firebaseTicketRepo) Put(ctx context.Context, key string, t model.Ticket) (json.RawMessage, error) {
	stored, err := r.client.Put(ctx, r.collection+"/"+key, t)
	if err != nil {
		return nil, writeError(key, err)
	}
	return stored, nil
}

// GetAll reads the whole collection in one request. A missing collection comes
// back as "null" and yields an empty map. Records that do not decode are
// skipped and logged rather than failing the whole read.
func (r *firebaseTicketRepo) GetAll(ctx context.Context) (map[string]model.Ticket, error) {
	raw, err := r.client.Get(ctx, r.collection)
	if err != nil {
		return nil, readError(err)
	}

	out := make(map[string]model.Ticket)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, &StoreReadError{Err: err}
	}
	for key, doc := range docs {
		var t model.Ticket
		if err := json.Unmarshal(doc, &t); err != nil {
			log.Warn().Err(err).Str("ticket", key).Msg("firebase: skipping undecodable ticket")
			continue
		}
		out[key] = t
	}
	return out, nil
}
