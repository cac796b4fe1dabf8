package repository

import (
	"context"
	"encoding/json"

	"snp/internal/model"

	"gorm.io/gorm"
)

type gormTicketRepo struct{ db *gorm.DB }

// NewGormTicketRepository stores tickets in a SQL table keyed by firebase_key.
func NewGormTicketRepository(db *gorm.DB) TicketRepository {
	return &gormTicketRepo{db: db}
}

// Put upserts every column, matching the document store's replace semantics.
func (r *gormTicketRepo) Put(ctx context.Context, key string, t model.Ticket) (json.RawMessage, error) {
	t.FirebaseKey = key
	if err := r.db.WithContext(ctx).Save(&t).Error; err != nil {
		return nil, writeError(key, err)
	}
	stored, err := json.Marshal(t)
	if err != nil {
		return nil, writeError(key, err)
	}
	return stored, nil
}

func (r *gormTicketRepo) GetAll(ctx context.Context) (map[string]model.Ticket, error) {
	var rows []model.Ticket
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, readError(err)
	}
	out := make(map[string]model.Ticket, len(rows))
	for _, t := range rows {
		out[t.FirebaseKey] = t
	}
	return out, nil
}
