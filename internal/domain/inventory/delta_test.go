package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
)

func item(code string, qty int) entity.LineItem {
	return entity.LineItem{ProductCode: code, Quantity: qty}
}

func TestDeltas_EdicionMismoCodigo(t *testing.T) {
	got := inventory.Deltas(
		[]entity.LineItem{item("AP001", 3)},
		[]entity.LineItem{item("AP001", 5)},
		entity.OrderSale.Direction(),
	)
	assert.Equal(t, []inventory.Delta{{ProductCode: "AP001", Change: -2}}, got)
}

func TestDeltas_CambioDeCodigo(t *testing.T) {
	got := inventory.Deltas(
		[]entity.LineItem{item("AP001", 4)},
		[]entity.LineItem{item("BX200", 2)},
		entity.OrderSale.Direction(),
	)
	assert.Equal(t, []inventory.Delta{
		{ProductCode: "AP001", Change: 4},
		{ProductCode: "BX200", Change: -2},
	}, got)
}

func TestDeltas_SinCambiosNoGeneraMovimientos(t *testing.T) {
	items := []entity.LineItem{item("AP001", 2), item("AP001", 1)}
	got := inventory.Deltas(items, []entity.LineItem{item("AP001", 3)}, entity.OrderPurchase.Direction())
	assert.Empty(t, got)
}

func TestApplyYReverse_Compra(t *testing.T) {
	items := []entity.LineItem{item("ZZ9", 1), item("AP001", 20), item("ZZ9", 2)}
	assert.Equal(t, []inventory.Delta{
		{ProductCode: "AP001", Change: 20},
		{ProductCode: "ZZ9", Change: 3},
	}, inventory.Apply(items, entity.OrderPurchase.Direction()))
	assert.Equal(t, []inventory.Delta{
		{ProductCode: "AP001", Change: -20},
		{ProductCode: "ZZ9", Change: -3},
	}, inventory.Reverse(items, entity.OrderPurchase.Direction()))
}
