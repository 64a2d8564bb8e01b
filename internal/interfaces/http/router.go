package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/policy"
	"github.com/jhoicas/erp-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName       string
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	UserUC        *usecase.UserUseCase
	Sales         *orders.Service
	Purchases     *orders.Service
	Ledger        *inventory.Ledger
	Inventory     *inventory.QueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	Metrics       *metrics.Metrics // nil = sin /metrics
	Cookie        CookieConfig
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")
	session := SessionMiddleware(deps.AuthUC, deps.Cookie.Name)
	can := RequireCapability

	// Auth (login y logout públicos)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", session, authHandler.Me)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products", session)
	products.Get("/", can(policy.ProductsRead), productHandler.List)
	products.Post("/", can(policy.ProductsWrite), productHandler.Create)
	products.Get("/:code", can(policy.ProductsRead), productHandler.GetByCode)
	products.Put("/:code", can(policy.ProductsWrite), productHandler.Update)
	products.Delete("/:code", can(policy.ProductsWrite), productHandler.Delete)

	// Sales y purchases: mismas rutas, distinto servicio y capacidades
	orderRoutes(api.Group("/sales", session), NewOrderHandler(deps.Sales), policy.SalesRead, policy.SalesWrite)
	orderRoutes(api.Group("/purchases", session), NewOrderHandler(deps.Purchases), policy.PurchasesRead, policy.PurchasesWrite)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Inventory, deps.Replenishment)
	inv := api.Group("/inventory", session)
	inv.Get("/list", can(policy.InventoryRead), inventoryHandler.List)
	inv.Get("/history", can(policy.InventoryRead), inventoryHandler.History)
	inv.Get("/ledger", can(policy.InventoryRead), inventoryHandler.Ledger)
	inv.Get("/reconcile", can(policy.InventoryRead), inventoryHandler.Reconcile)
	inv.Get("/replenishment", can(policy.InventoryRead), inventoryHandler.GetReplenishmentList)
	inv.Post("/adjustments", can(policy.InventoryAdjust), inventoryHandler.Adjust)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users", session, can(policy.UsersManage))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Dashboards por rol
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard := api.Group("/dashboard", session)
	dashboard.Get("/admin", can(policy.DashboardAdmin), dashboardHandler.Admin)
	dashboard.Get("/seller", can(policy.DashboardSeller), dashboardHandler.Seller)
	dashboard.Get("/client", can(policy.DashboardClient), dashboardHandler.Client)
}

func orderRoutes(g fiber.Router, h *OrderHandler, read, write policy.Capability) {
	g.Get("/", RequireCapability(read), h.List)
	g.Post("/", RequireCapability(write), h.Create)
	g.Get("/:id", RequireCapability(read), h.GetByID)
	g.Get("/:id/receipt", RequireCapability(read), h.Receipt)
	g.Put("/:id", RequireCapability(write), h.Update)
	g.Delete("/:id", RequireCapability(write), h.Delete)
}
