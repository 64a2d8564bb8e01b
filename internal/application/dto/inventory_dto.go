package dto

import "time"

// StockItemResponse fila de GET /api/inventory/list.
type StockItemResponse struct {
	Code         string                `json:"code"`
	Name         string                `json:"name"`
	CurrentStock int                   `json:"current_stock"`
	LastUpdated  time.Time             `json:"last_updated"`
	Recent       []HistoryItemResponse `json:"recent,omitempty"`
}

// HistoryItemResponse fila de GET /api/inventory/history.
type HistoryItemResponse struct {
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason"`
	Change      int       `json:"change"`
	ReferenceID string    `json:"reference_id,omitempty"`
}

// LedgerEntryResponse fila del ledger unida con el nombre del producto.
type LedgerEntryResponse struct {
	ID          string    `json:"id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	Change      int       `json:"change"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// LedgerListQuery filtros de GET /api/inventory/ledger.
type LedgerListQuery struct {
	PageRequest
	ProductCode string     `query:"product_code"`
	From        *time.Time `query:"-"`
	To          *time.Time `query:"-"`
}

// LedgerListResponse ledger paginado.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// AdjustmentRequest body de POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	ProductCode string `json:"product_code" validate:"required,max=64"`
	Change      int    `json:"change" validate:"required"`
	Reason      string `json:"reason" validate:"max=100"`
}

// ReconcileItem producto cuyo contador no coincide con el ledger.
type ReconcileItem struct {
	Code         string `json:"code"`
	Stock        int    `json:"stock"`
	InitialStock int    `json:"initial_stock"`
	LedgerSum    int    `json:"ledger_sum"`
	Expected     int    `json:"expected"`
}

// ReconcileResponse resultado de GET /api/inventory/reconcile.
type ReconcileResponse struct {
	Checked    int             `json:"checked"`
	Consistent bool            `json:"consistent"`
	Mismatches []ReconcileItem `json:"mismatches"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo el umbral de stock.
type ReplenishmentSuggestionDTO struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	CurrentStock      int    `json:"current_stock"`
	Threshold         int    `json:"threshold"`
	SuggestedOrderQty int    `json:"suggested_order_qty"`
	UnitsSoldLast30d  int    `json:"units_sold_last_30d"`
	Priority          int    `json:"priority"` // 1 = más urgente
}
