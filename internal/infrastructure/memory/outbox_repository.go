package memory

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo eventos de stock pendientes en memoria.
type OutboxRepo struct {
	v view
}

func (r *OutboxRepo) Enqueue(_ context.Context, ev *entity.StockEvent) error {
	return r.v.do(func(st *state) error {
		cp := *ev
		st.outbox = append(st.outbox, &cp)
		return nil
	})
}

func (r *OutboxRepo) ClaimPending(_ context.Context, limit int) ([]*entity.StockEvent, error) {
	var out []*entity.StockEvent
	err := r.v.do(func(st *state) error {
		for _, ev := range st.outbox {
			if ev.PublishedAt != nil {
				continue
			}
			cp := *ev
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *OutboxRepo) MarkPublished(_ context.Context, ids []string, at time.Time) error {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return r.v.do(func(st *state) error {
		for _, ev := range st.outbox {
			if set[ev.ID] {
				t := at
				ev.PublishedAt = &t
			}
		}
		return nil
	})
}

// Pending número de eventos sin publicar.
func (r *OutboxRepo) Pending() int {
	n := 0
	_ = r.v.do(func(st *state) error {
		for _, ev := range st.outbox {
			if ev.PublishedAt == nil {
				n++
			}
		}
		return nil
	})
	return n
}
