package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo eventos de stock escritos en la misma transacción que el ledger.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue inserta un evento pendiente.
func (r *OutboxRepo) Enqueue(ctx context.Context, ev *entity.StockEvent) error {
	query := `
		INSERT INTO stock_outbox (id, entry_id, product_code, change, stock_after, reason, reference_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.EntryID, ev.ProductCode, ev.Change, ev.StockAfter, ev.Reason, ev.ReferenceID, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue stock event: %w", err)
	}
	return nil
}

// ClaimPending bloquea los eventos pendientes más antiguos. SKIP LOCKED permite varios relays.
func (r *OutboxRepo) ClaimPending(ctx context.Context, limit int) ([]*entity.StockEvent, error) {
	query := `
		SELECT id, entry_id, product_code, change, stock_after, reason, reference_id, occurred_at
		FROM stock_outbox WHERE published_at IS NULL
		ORDER BY occurred_at, id
		LIMIT $1 FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("claim stock events: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockEvent
	for rows.Next() {
		var ev entity.StockEvent
		if err := rows.Scan(&ev.ID, &ev.EntryID, &ev.ProductCode, &ev.Change, &ev.StockAfter, &ev.Reason, &ev.ReferenceID, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan stock event: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}

// MarkPublished marca los eventos como publicados.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE stock_outbox SET published_at = $2 WHERE id = ANY($1)`, ids, at)
	if err != nil {
		return fmt.Errorf("mark stock events published: %w", err)
	}
	return nil
}
