package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

func TestOrderReceipt_GeneraPDF(t *testing.T) {
	g := NewReceiptGenerator("ERP Demo")
	order := &entity.Order{
		ID:        "3f2a9c1e-0000-0000-0000-000000000000",
		Kind:      entity.OrderSale,
		Party:     "Ana Pérez",
		Total:     decimal.RequireFromString("10.00"),
		Points:    8,
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	lines := []orders.ReceiptLine{{
		ProductCode: "AP001", ProductName: "Aceite", Quantity: 4,
		UnitPrice: decimal.RequireFromString("2.50"), Subtotal: decimal.RequireFromString("10.00"),
	}}

	doc, err := g.OrderReceipt(context.Background(), order, lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "debe ser un PDF")
}

func TestFormatMoney_SeparadoresLocales(t *testing.T) {
	g := NewReceiptGenerator("ERP Demo")
	assert.Equal(t, "1.234.567,50", g.formatMoney(decimal.RequireFromString("1234567.5")))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3F2A9C1E", shortID("3f2a9c1e-aaaa"))
	assert.Equal(t, "AB", shortID("ab"))
}
