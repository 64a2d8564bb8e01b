package dto

import "github.com/shopspring/decimal"

// AdminDashboardDTO respuesta de GET /api/dashboard/admin.
type AdminDashboardDTO struct {
	SalesToday      int                 `json:"sales_today"`
	RevenueToday    decimal.Decimal     `json:"revenue_today"`
	PurchasesToday  int                 `json:"purchases_today"`
	SpentToday      decimal.Decimal     `json:"spent_today"`
	LowStockCount   int                 `json:"low_stock_count"`
	LowStockLimit   int                 `json:"low_stock_threshold"`
	ActiveUsers     int                 `json:"active_users"`
	PopularProducts []PopularProductDTO `json:"popular_products"`
}

// PopularProductDTO producto por unidades vendidas, netas de ediciones y reversiones.
type PopularProductDTO struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitsSold int    `json:"units_sold"`
}

// SellerDashboardDTO respuesta de GET /api/dashboard/seller.
type SellerDashboardDTO struct {
	MySalesToday       int             `json:"my_sales_today"`
	MyRevenueToday     decimal.Decimal `json:"my_revenue_today"`
	MySalesTotal       int             `json:"my_sales_total"`
	ClientsServedToday int             `json:"clients_served_today"`
}

// ClientDashboardDTO respuesta de GET /api/dashboard/client.
type ClientDashboardDTO struct {
	Orders     int             `json:"orders"`
	Points     int             `json:"points"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	LastOrders []SaleResponse  `json:"last_orders"`
}
