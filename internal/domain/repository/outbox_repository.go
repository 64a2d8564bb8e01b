package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// OutboxRepository eventos de stock pendientes de publicar.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *entity.StockEvent) error
	// ClaimPending bloquea hasta limit eventos no publicados (más antiguos primero).
	ClaimPending(ctx context.Context, limit int) ([]*entity.StockEvent, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}
