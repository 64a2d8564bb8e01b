// Package analytics contiene los paneles de resumen por rol.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

const (
	clientLastOrders = 5 // ventas recientes en el panel del cliente
	popularLimit     = 5 // productos más vendidos en el panel admin
)

// saleReasons motivos del ledger que mueven stock por ventas.
var saleReasons = []string{entity.ReasonSale, entity.ReasonSaleEdit, entity.ReasonSaleReversal}

// DashboardUseCase genera los resúmenes de los paneles admin, vendedor y cliente.
// Solo lectura; delega las agregaciones en los repositorios.
type DashboardUseCase struct {
	sales             repository.OrderRepository
	purchases         repository.OrderRepository
	products          repository.ProductRepository
	history           repository.StockHistoryRepository
	users             repository.UserRepository
	lowStockThreshold int
	now               func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	sales, purchases repository.OrderRepository,
	products repository.ProductRepository,
	history repository.StockHistoryRepository,
	users repository.UserRepository,
	lowStockThreshold int,
) *DashboardUseCase {
	return &DashboardUseCase{
		sales:             sales,
		purchases:         purchases,
		products:          products,
		history:           history,
		users:             users,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

type summaryResult struct {
	sum repository.OrderSummary
	err error
}

type countResult struct {
	n   int
	err error
}

type popularResult struct {
	items []dto.PopularProductDTO
	err   error
}

// Admin resumen del día para superadmin/admin.
//
// Cinco consultas en paralelo:
//  1. ventas de hoy      → SalesToday + RevenueToday
//  2. compras de hoy     → PurchasesToday + SpentToday
//  3. stock bajo umbral  → LowStockCount
//  4. usuarios activos   → ActiveUsers
//  5. más vendidos       → PopularProducts
func (uc *DashboardUseCase) Admin(ctx context.Context) (*dto.AdminDashboardDTO, error) {
	from, to := uc.today()

	salesCh := make(chan summaryResult, 1)
	purchasesCh := make(chan summaryResult, 1)
	lowCh := make(chan countResult, 1)
	usersCh := make(chan countResult, 1)
	popularCh := make(chan popularResult, 1)

	go func() {
		sum, err := uc.sales.Summary(ctx, repository.OrderFilter{From: &from, To: &to})
		salesCh <- summaryResult{sum, err}
	}()
	go func() {
		sum, err := uc.purchases.Summary(ctx, repository.OrderFilter{From: &from, To: &to})
		purchasesCh <- summaryResult{sum, err}
	}()
	go func() {
		n, err := uc.products.CountBelowStock(ctx, uc.lowStockThreshold)
		lowCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.users.CountActive(ctx)
		usersCh <- countResult{n, err}
	}()
	go func() {
		items, err := uc.popularProducts(ctx, popularLimit)
		popularCh <- popularResult{items, err}
	}()

	sales := <-salesCh
	purchases := <-purchasesCh
	low := <-lowCh
	active := <-usersCh
	popular := <-popularCh

	if sales.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", sales.err)
	}
	if purchases.err != nil {
		return nil, fmt.Errorf("dashboard: compras de hoy: %w", purchases.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if active.err != nil {
		return nil, fmt.Errorf("dashboard: usuarios activos: %w", active.err)
	}
	if popular.err != nil {
		return nil, fmt.Errorf("dashboard: productos populares: %w", popular.err)
	}

	return &dto.AdminDashboardDTO{
		SalesToday:      sales.sum.Count,
		RevenueToday:    sales.sum.Total.Round(2),
		PurchasesToday:  purchases.sum.Count,
		SpentToday:      purchases.sum.Total.Round(2),
		LowStockCount:   low.n,
		LowStockLimit:   uc.lowStockThreshold,
		ActiveUsers:     active.n,
		PopularProducts: popular.items,
	}, nil
}

// popularProducts los limit productos con más unidades vendidas según el ledger. Las ventas
// restan stock, así que las unidades netas son el negativo de la suma de sus movimientos.
func (uc *DashboardUseCase) popularProducts(ctx context.Context, limit int) ([]dto.PopularProductDTO, error) {
	sums, err := uc.history.SumByProduct(ctx, saleReasons, nil)
	if err != nil {
		return nil, err
	}
	ranked := make([]dto.PopularProductDTO, 0, len(sums))
	for code, sum := range sums {
		if -sum > 0 {
			ranked = append(ranked, dto.PopularProductDTO{Code: code, UnitsSold: -sum})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].UnitsSold != ranked[j].UnitsSold {
			return ranked[i].UnitsSold > ranked[j].UnitsSold
		}
		return ranked[i].Code < ranked[j].Code
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		p, err := uc.products.GetByCode(ctx, ranked[i].Code)
		if err != nil {
			return nil, err
		}
		if p != nil {
			ranked[i].Name = p.Name
			ranked[i].Category = p.Category
		}
	}
	return ranked, nil
}

// Seller ventas registradas por el vendedor: hoy, acumulado y clientes atendidos hoy.
func (uc *DashboardUseCase) Seller(ctx context.Context, userID string) (*dto.SellerDashboardDTO, error) {
	from, to := uc.today()

	todayCh := make(chan summaryResult, 1)
	totalCh := make(chan summaryResult, 1)
	clientsCh := make(chan countResult, 1)
	go func() {
		sum, err := uc.sales.Summary(ctx, repository.OrderFilter{CreatedBy: userID, From: &from, To: &to})
		todayCh <- summaryResult{sum, err}
	}()
	go func() {
		sum, err := uc.sales.Summary(ctx, repository.OrderFilter{CreatedBy: userID})
		totalCh <- summaryResult{sum, err}
	}()
	go func() {
		n, err := uc.clientsServed(ctx, repository.OrderFilter{CreatedBy: userID, From: &from, To: &to})
		clientsCh <- countResult{n, err}
	}()
	today := <-todayCh
	total := <-totalCh
	clients := <-clientsCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del vendedor hoy: %w", today.err)
	}
	if total.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del vendedor: %w", total.err)
	}
	if clients.err != nil {
		return nil, fmt.Errorf("dashboard: clientes atendidos: %w", clients.err)
	}
	return &dto.SellerDashboardDTO{
		MySalesToday:       today.sum.Count,
		MyRevenueToday:     today.sum.Total.Round(2),
		MySalesTotal:       total.sum.Count,
		ClientsServedToday: clients.n,
	}, nil
}

// clientsServed clientes distintos de las ventas del filtro: por id de usuario cuando la
// venta lo tiene y, si no, por nombre sin distinguir mayúsculas.
func (uc *DashboardUseCase) clientsServed(ctx context.Context, f repository.OrderFilter) (int, error) {
	list, _, err := uc.sales.List(ctx, f)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(list))
	for _, o := range list {
		key := "id:" + o.PartyID
		if o.PartyID == "" {
			key = "name:" + strings.ToLower(strings.TrimSpace(o.Party))
		}
		seen[key] = struct{}{}
	}
	return len(seen), nil
}

// Client compras del cliente (ventas con su PartyID), puntos acumulados y últimas ventas.
func (uc *DashboardUseCase) Client(ctx context.Context, userID string) (*dto.ClientDashboardDTO, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	sum, err := uc.sales.Summary(ctx, repository.OrderFilter{PartyID: userID})
	if err != nil {
		return nil, fmt.Errorf("dashboard: compras del cliente: %w", err)
	}
	last, _, err := uc.sales.List(ctx, repository.OrderFilter{PartyID: userID, Limit: clientLastOrders})
	if err != nil {
		return nil, fmt.Errorf("dashboard: últimas compras: %w", err)
	}
	out := &dto.ClientDashboardDTO{
		Orders:     sum.Count,
		Points:     user.Points,
		TotalSpent: sum.Total.Round(2),
		LastOrders: make([]dto.SaleResponse, 0, len(last)),
	}
	for _, o := range last {
		out.LastOrders = append(out.LastOrders, orders.ToSaleResponse(o))
	}
	return out, nil
}

// today rango [00:00 de hoy, 00:00 de mañana) en la zona local.
func (uc *DashboardUseCase) today() (time.Time, time.Time) {
	now := uc.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
