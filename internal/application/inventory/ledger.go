package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// Movement un cambio de stock solicitado sobre un producto.
type Movement struct {
	ProductCode string
	Delta       int
	Reason      string
	ReferenceID string
	UserID      string
}

// Ledger motor de stock: cada movimiento actualiza el contador del producto, agrega la fila
// del ledger y encola el evento de salida dentro de una única transacción
// (SELECT FOR UPDATE sobre el producto, Commit/Rollback en TxRunner).
type Ledger struct {
	txRunner TxRunner
	cache    StockListCache
	recorder MovementRecorder
	now      func() time.Time
}

// NewLedger construye el motor. cache y recorder pueden ser nil.
func NewLedger(txRunner TxRunner, cache StockListCache, recorder MovementRecorder) *Ledger {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Ledger{txRunner: txRunner, cache: cache, recorder: recorder, now: time.Now}
}

// Tx transacción de stock en curso. Embebe los repositorios atados a la tx.
type Tx struct {
	Stores
	ledger  *Ledger
	applied []string
}

// Transact ejecuta fn en una transacción. Tras el Commit invalida la caché de stock
// y registra los movimientos confirmados; si fn falla no queda nada escrito.
func (l *Ledger) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	var applied []string
	err := l.txRunner.Run(ctx, func(s Stores) error {
		tx := &Tx{Stores: s, ledger: l}
		if err := fn(tx); err != nil {
			return err
		}
		applied = tx.applied
		return nil
	})
	if err != nil {
		return err
	}
	for _, reason := range applied {
		l.recorder.MovementCommitted(reason)
	}
	if len(applied) > 0 {
		l.InvalidateStockList(ctx)
	}
	return nil
}

// InvalidateStockList descarta la vista de stock cacheada.
func (l *Ledger) InvalidateStockList(ctx context.Context) {
	if l.cache != nil {
		l.cache.Invalidate(ctx)
	}
}

// Now reloj del motor (inyectable en tests).
func (l *Ledger) Now() time.Time { return l.now() }

// Apply aplica un movimiento: bloquea el producto, valida que el stock no quede negativo,
// actualiza el contador, agrega la fila del ledger y encola el evento.
func (t *Tx) Apply(ctx context.Context, mv Movement) (*entity.StockEntry, error) {
	if strings.TrimSpace(mv.ProductCode) == "" {
		return nil, domain.Invalid("product_code", "requerido")
	}
	if mv.Delta == 0 {
		return nil, domain.Invalid("change", "el cambio de stock no puede ser cero")
	}
	if mv.Reason == "" {
		return nil, domain.Invalid("reason", "requerido")
	}

	product, err := t.Products.GetByCodeForUpdate(ctx, mv.ProductCode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", mv.ProductCode)
	}

	newStock := product.Stock + mv.Delta
	if newStock < 0 {
		t.ledger.recorder.MovementRejected()
		return nil, &domain.InsufficientStockError{
			ProductCode: product.Code,
			Available:   product.Stock,
			Requested:   -mv.Delta,
		}
	}

	now := t.ledger.now()
	if err := t.Products.UpdateStock(ctx, product.Code, newStock, now); err != nil {
		return nil, err
	}

	entry := &entity.StockEntry{
		ID:          uuid.New().String(),
		ProductCode: product.Code,
		Change:      mv.Delta,
		Reason:      mv.Reason,
		ReferenceID: mv.ReferenceID,
		CreatedBy:   mv.UserID,
		CreatedAt:   now,
	}
	if err := t.History.Append(ctx, entry); err != nil {
		return nil, err
	}

	if t.Outbox != nil {
		event := &entity.StockEvent{
			ID:          uuid.New().String(),
			EntryID:     entry.ID,
			ProductCode: entry.ProductCode,
			Change:      entry.Change,
			StockAfter:  newStock,
			Reason:      entry.Reason,
			ReferenceID: entry.ReferenceID,
			OccurredAt:  now,
		}
		if err := t.Outbox.Enqueue(ctx, event); err != nil {
			return nil, err
		}
	}

	t.applied = append(t.applied, mv.Reason)
	return entry, nil
}

// Adjust registra un ajuste manual de inventario en su propia transacción.
func (l *Ledger) Adjust(ctx context.Context, userID string, in dto.AdjustmentRequest) (*dto.LedgerEntryResponse, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = entity.ReasonAdjustment
	}
	var (
		entry *entity.StockEntry
		name  string
	)
	err := l.Transact(ctx, func(tx *Tx) error {
		var err error
		entry, err = tx.Apply(ctx, Movement{
			ProductCode: strings.TrimSpace(in.ProductCode),
			Delta:       in.Change,
			Reason:      reason,
			UserID:      userID,
		})
		if err != nil {
			return err
		}
		p, err := tx.Products.GetByCode(ctx, entry.ProductCode)
		if err != nil {
			return err
		}
		if p != nil {
			name = p.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.LedgerEntryResponse{
		ID:          entry.ID,
		ProductCode: entry.ProductCode,
		ProductName: name,
		Change:      entry.Change,
		Reason:      entry.Reason,
		CreatedBy:   entry.CreatedBy,
		Timestamp:   entry.CreatedAt,
	}, nil
}
