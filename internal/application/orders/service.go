// Package orders implementa el ciclo de vida crear/editar/eliminar de ventas y compras.
// Cada operación mueve el stock a través del ledger en la misma transacción que persiste
// el pedido: si cualquier línea falla no queda escrito ni el pedido ni ningún movimiento.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	domaininv "github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// Service casos de uso de un tipo de pedido (ventas o compras).
type Service struct {
	kind     entity.OrderKind
	ledger   *inventory.Ledger
	orders   repository.OrderRepository
	products repository.ProductRepository
	receipts ReceiptGenerator
}

// NewService construye el servicio para el tipo de pedido de orders.
func NewService(
	ledger *inventory.Ledger,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	receipts ReceiptGenerator,
) *Service {
	return &Service{
		kind:     orders.Kind(),
		ledger:   ledger,
		orders:   orders,
		products: products,
		receipts: receipts,
	}
}

// Kind tipo de pedido que gestiona el servicio.
func (s *Service) Kind() entity.OrderKind { return s.kind }

// Create valida las líneas, aplica el delta de stock de cada producto y persiste el pedido.
func (s *Service) Create(ctx context.Context, userID string, in dto.OrderInput) (*entity.Order, error) {
	items, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	now := s.ledger.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		Kind:      s.kind,
		Party:     strings.TrimSpace(in.Party),
		PartyID:   s.partyID(in),
		Items:     items,
		Total:     entity.ComputeTotal(items),
		Status:    entity.OrderStatusCompleted,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.ledger.Transact(ctx, func(tx *inventory.Tx) error {
		for _, d := range domaininv.Apply(items, s.kind.Direction()) {
			if _, err := tx.Apply(ctx, inventory.Movement{
				ProductCode: d.ProductCode,
				Delta:       d.Change,
				Reason:      s.kind.CreateReason(),
				ReferenceID: order.ID,
				UserID:      userID,
			}); err != nil {
				return err
			}
		}
		if s.kind == entity.OrderSale {
			points, err := s.points(ctx, tx, items)
			if err != nil {
				return err
			}
			order.Points = points
			if err := s.movePoints(ctx, tx, order.PartyID, points); err != nil {
				return err
			}
		}
		return tx.Orders(s.kind).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Edit reemplaza las líneas del pedido. Por cada código aplica solo la diferencia
// (solicitado - original); un código eliminado se revierte completo y uno nuevo se aplica completo.
func (s *Service) Edit(ctx context.Context, userID, id string, in dto.OrderInput) (*entity.Order, error) {
	items, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	var updated *entity.Order
	err = s.ledger.Transact(ctx, func(tx *inventory.Tx) error {
		repo := tx.Orders(s.kind)
		original, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.NotFound(s.resource(), id)
		}

		for _, d := range domaininv.Deltas(original.Items, items, s.kind.Direction()) {
			if _, err := tx.Apply(ctx, inventory.Movement{
				ProductCode: d.ProductCode,
				Delta:       d.Change,
				Reason:      s.kind.EditReason(),
				ReferenceID: original.ID,
				UserID:      userID,
			}); err != nil {
				return err
			}
		}

		next := *original
		next.Party = strings.TrimSpace(in.Party)
		next.PartyID = s.partyID(in)
		next.Items = items
		next.Total = entity.ComputeTotal(items)
		next.UpdatedAt = s.ledger.Now()

		if s.kind == entity.OrderSale {
			points, err := s.points(ctx, tx, items)
			if err != nil {
				return err
			}
			next.Points = points
			if err := s.movePoints(ctx, tx, original.PartyID, -original.Points); err != nil {
				return err
			}
			if err := s.movePoints(ctx, tx, next.PartyID, next.Points); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete revierte el efecto de stock del pedido (motivo de reversión) y lo elimina.
// Las filas del ledger se conservan.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.ledger.Transact(ctx, func(tx *inventory.Tx) error {
		repo := tx.Orders(s.kind)
		order, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound(s.resource(), id)
		}
		for _, d := range domaininv.Reverse(order.Items, s.kind.Direction()) {
			if _, err := tx.Apply(ctx, inventory.Movement{
				ProductCode: d.ProductCode,
				Delta:       d.Change,
				Reason:      s.kind.ReversalReason(),
				ReferenceID: order.ID,
				UserID:      userID,
			}); err != nil {
				return err
			}
		}
		if s.kind == entity.OrderSale {
			if err := s.movePoints(ctx, tx, order.PartyID, -order.Points); err != nil {
				return err
			}
		}
		return repo.Delete(ctx, order.ID)
	})
}

// Get obtiene un pedido por ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound(s.resource(), id)
	}
	return order, nil
}

// List lista pedidos del más reciente al más antiguo con filtros opcionales.
func (s *Service) List(ctx context.Context, q dto.OrderListQuery) ([]*entity.Order, dto.PageResponse, error) {
	q.DefaultPage()
	list, total, err := s.orders.List(ctx, repository.OrderFilter{
		Query:       strings.TrimSpace(q.Query),
		ProductCode: strings.TrimSpace(q.ProductCode),
		From:        q.From,
		To:          q.To,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, dto.PageResponse{}, err
	}
	return list, dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total}, nil
}

// Receipt genera el comprobante PDF del pedido.
func (s *Service) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	if s.receipts == nil {
		return nil, "", fmt.Errorf("generador de comprobantes no configurado")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	lines := make([]ReceiptLine, 0, len(order.Items))
	for _, it := range order.Items {
		name := it.ProductCode
		p, err := s.products.GetByCode(ctx, it.ProductCode)
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			name = p.Name
		}
		lines = append(lines, ReceiptLine{
			ProductCode: it.ProductCode,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	pdf, err := s.receipts.OrderReceipt(ctx, order, lines)
	if err != nil {
		return nil, "", fmt.Errorf("generar comprobante: %w", err)
	}
	short := order.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return pdf, fmt.Sprintf("%s-%s.pdf", s.kind, short), nil
}

func (s *Service) validate(in dto.OrderInput) ([]entity.LineItem, error) {
	if strings.TrimSpace(in.Party) == "" {
		if s.kind == entity.OrderSale {
			return nil, domain.Invalid("client", "requerido")
		}
		return nil, domain.Invalid("supplier", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos una línea")
	}
	items := make([]entity.LineItem, 0, len(in.Items))
	for i, it := range in.Items {
		code := strings.TrimSpace(it.ProductCode)
		if code == "" {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_code", i), "requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "cantidad inválida")
		}
		if it.Price.LessThan(decimal.Zero) {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].price", i), "precio inválido")
		}
		items = append(items, entity.LineItem{ProductCode: code, Quantity: it.Quantity, UnitPrice: it.Price})
	}
	return items, nil
}

func (s *Service) partyID(in dto.OrderInput) string {
	if s.kind != entity.OrderSale {
		return ""
	}
	return strings.TrimSpace(in.PartyID)
}

// points suma los puntos de fidelización de las líneas (puntos por unidad del producto).
func (s *Service) points(ctx context.Context, tx *inventory.Tx, items []entity.LineItem) (int, error) {
	perUnit := make(map[string]int)
	total := 0
	for _, it := range items {
		pts, ok := perUnit[it.ProductCode]
		if !ok {
			p, err := tx.Products.GetByCode(ctx, it.ProductCode)
			if err != nil {
				return 0, err
			}
			if p == nil {
				return 0, domain.NotFound("producto", it.ProductCode)
			}
			pts = p.Points
			perUnit[it.ProductCode] = pts
		}
		total += pts * it.Quantity
	}
	return total, nil
}

// movePoints acredita (delta > 0) o descuenta puntos al cliente. Un cliente ya eliminado
// se ignora al descontar.
func (s *Service) movePoints(ctx context.Context, tx *inventory.Tx, userID string, delta int) error {
	if userID == "" || delta == 0 || tx.Users == nil {
		return nil
	}
	u, err := tx.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		if delta < 0 {
			return nil
		}
		return domain.NotFound("cliente", userID)
	}
	return tx.Users.AddPoints(ctx, userID, delta)
}

func (s *Service) resource() string {
	if s.kind == entity.OrderSale {
		return "venta"
	}
	return "compra"
}
