package worker

// dlq.go: dead-letter list for notification steps.
// Every relay/email step that fails after a ticket was saved is pushed here
// for manual follow-up. Nothing consumes the list automatically: there is no
// retry, an operator resends by hand (see `snpctl pendientes`).

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix         = "dlq:"
	QueueNotificacion = "notificaciones"
)

// DLQEntry describes one failed notification step.
type DLQEntry struct {
	ID        string `json:"id"`
	TicketKey string `json:"ticket_key"`
	Paso      string `json:"paso"`
	Destino   string `json:"destino,omitempty"`
	Reason    string `json:"reason"`
	FailedAt  string `json:"failed_at"` // ISO 8601
}

// DeadLetter records failed steps. Implementations must not fail the caller.
type DeadLetter interface {
	Registrar(ctx context.Context, e DLQEntry)
}

// NopDLQ is used when Redis is not configured; the zerolog line written by
// the caller is then the only record.
type NopDLQ struct{}

func (NopDLQ) Registrar(context.Context, DLQEntry) {}

// RedisDLQ keeps entries in the Redis list dlq:{queue}, newest first.
type RedisDLQ struct {
	rdb   *redis.Client
	queue string
}

func NewRedisDLQ(rdb *redis.Client) *RedisDLQ {
	return &RedisDLQ{rdb: rdb, queue: QueueNotificacion}
}

func (d *RedisDLQ) key() string { return DLQPrefix + d.queue }

// Registrar pushes e, filling ID and FailedAt when empty.
func (d *RedisDLQ) Registrar(ctx context.Context, e DLQEntry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FailedAt == "" {
		e.FailedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("queue", d.queue).Msg("dlq: failed to marshal entry")
		return
	}

	if err := d.rdb.LPush(ctx, d.key(), data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", d.key()).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("ticket", e.TicketKey).
		Str("paso", e.Paso).
		Str("reason", e.Reason).
		Msg("dlq: step moved to dead letter list")
}

// Length returns the number of pending entries.
func (d *RedisDLQ) Length(ctx context.Context) (int64, error) {
	return d.rdb.LLen(ctx, d.key()).Result()
}

// Listar returns up to n entries, newest first.
func (d *RedisDLQ) Listar(ctx context.Context, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		n = 50
	}
	raws, err := d.rdb.LRange(ctx, d.key(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("dlq: list: %w", err)
	}
	out := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Warn().Err(err).Msg("dlq: skipping malformed entry")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
