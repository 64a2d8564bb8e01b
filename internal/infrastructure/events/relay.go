package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// PublishedRecorder recibe el número de eventos publicados (métricas).
type PublishedRecorder interface {
	OutboxPublished(n int)
}

// Relay mueve eventos del outbox al publicador. Por defecto reclamar, publicar y marcar ocurre
// en una transacción: si la publicación falla nada se marca y el lote se reintenta en el
// siguiente tick.
type Relay struct {
	runner    inventory.TxRunner
	publisher Publisher
	batchSize int
	interval  time.Duration
	log       zerolog.Logger
	recorder  PublishedRecorder
	now       func() time.Time
	outsideTx bool
}

// NewRelay construye el relay. recorder puede ser nil.
func NewRelay(runner inventory.TxRunner, publisher Publisher, batchSize int, interval time.Duration, log zerolog.Logger, recorder PublishedRecorder) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Relay{
		runner:    runner,
		publisher: publisher,
		batchSize: batchSize,
		interval:  interval,
		log:       log,
		recorder:  recorder,
		now:       time.Now,
	}
}

// PublishOutsideTx publica entre dos transacciones cortas (reclamar y después marcar) en vez
// de dentro de una. Es para almacenes que serializan todas las transacciones, como el de
// memoria, con un solo relay: el almacén no queda bloqueado mientras el broker responde.
// Si marcar falla, el lote se vuelve a publicar en el siguiente tick.
func (r *Relay) PublishOutsideTx() *Relay {
	r.outsideTx = true
	return r
}

// Run procesa lotes en cada tick hasta que ctx se cancele.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.log.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("relay de outbox iniciado")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("relay de outbox detenido")
			return
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("relay de outbox")
			}
		}
	}
}

// Drain publica lotes hasta vaciar el outbox. Devuelve el total publicado.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil || n < r.batchSize {
			return total, err
		}
	}
}

// RelayOnce procesa un lote.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	relay := r.relayInTx
	if r.outsideTx {
		relay = r.relayOutsideTx
	}
	published, err := relay(ctx)
	if err != nil {
		return 0, err
	}
	if published > 0 {
		if r.recorder != nil {
			r.recorder.OutboxPublished(published)
		}
		r.log.Debug().Int("events", published).Msg("eventos de stock publicados")
	}
	return published, nil
}

func (r *Relay) relayInTx(ctx context.Context) (int, error) {
	published := 0
	err := r.runner.Run(ctx, func(s inventory.Stores) error {
		events, err := s.Outbox.ClaimPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		if err := r.publisher.Publish(ctx, events); err != nil {
			return fmt.Errorf("publicar %d eventos: %w", len(events), err)
		}
		ids := make([]string, len(events))
		for i, ev := range events {
			ids[i] = ev.ID
		}
		if err := s.Outbox.MarkPublished(ctx, ids, r.now()); err != nil {
			return err
		}
		published = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

func (r *Relay) relayOutsideTx(ctx context.Context) (int, error) {
	var events []*entity.StockEvent
	err := r.runner.Run(ctx, func(s inventory.Stores) error {
		var err error
		events, err = s.Outbox.ClaimPending(ctx, r.batchSize)
		return err
	})
	if err != nil || len(events) == 0 {
		return 0, err
	}
	if err := r.publisher.Publish(ctx, events); err != nil {
		return 0, fmt.Errorf("publicar %d eventos: %w", len(events), err)
	}
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	err = r.runner.Run(ctx, func(s inventory.Stores) error {
		return s.Outbox.MarkPublished(ctx, ids, r.now())
	})
	if err != nil {
		return 0, fmt.Errorf("marcar %d eventos publicados: %w", len(ids), err)
	}
	return len(events), nil
}
