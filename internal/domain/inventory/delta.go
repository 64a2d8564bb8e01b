package inventory

import (
	"sort"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// Delta cambio de stock con signo a aplicar a un producto.
type Delta struct {
	ProductCode string
	Change      int
}

// Quantities agrega la cantidad por código de producto.
func Quantities(items []entity.LineItem) map[string]int {
	out := make(map[string]int, len(items))
	for _, it := range items {
		out[it.ProductCode] += it.Quantity
	}
	return out
}

// Deltas calcula, por código de producto, direction*(requested - original) (servicio de dominio).
// Un código que desaparece se revierte completo y uno nuevo se aplica completo.
// Los deltas nulos se omiten y el resultado se ordena por código para bloquear filas
// siempre en el mismo orden.
func Deltas(original, requested []entity.LineItem, direction int) []Delta {
	before := Quantities(original)
	after := Quantities(requested)

	codes := make(map[string]struct{}, len(before)+len(after))
	for c := range before {
		codes[c] = struct{}{}
	}
	for c := range after {
		codes[c] = struct{}{}
	}

	out := make([]Delta, 0, len(codes))
	for c := range codes {
		d := direction * (after[c] - before[c])
		if d != 0 {
			out = append(out, Delta{ProductCode: c, Change: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductCode < out[j].ProductCode })
	return out
}

// Apply efecto de crear un pedido: equivale a Deltas(nil, items, direction).
func Apply(items []entity.LineItem, direction int) []Delta {
	return Deltas(nil, items, direction)
}

// Reverse efecto de eliminar un pedido: deshace lo que aplicó al crearse/editarse.
func Reverse(items []entity.LineItem, direction int) []Delta {
	return Deltas(items, nil, direction)
}
