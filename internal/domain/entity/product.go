package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Code es la clave de negocio única y la
// referencia usada por líneas de pedido y por el ledger de stock.
// Stock solo cambia vía movimientos del ledger; InitialStock es el stock con el que se creó.
type Product struct {
	ID           string
	Code         string
	Name         string
	Description  string
	Category     string
	Price        decimal.Decimal
	Points       int // puntos de fidelización por unidad vendida
	Stock        int
	InitialStock int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
