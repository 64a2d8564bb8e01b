package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/orders"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/infrastructure/cache"
	"github.com/jhoicas/erp-api/internal/infrastructure/events"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/erp-api/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-api/internal/interfaces/http"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/logger"
)

// storage repositorios fuera de transacción + TxRunner del backend elegido.
type storage struct {
	runner    inventory.TxRunner
	products  repository.ProductRepository
	history   repository.StockHistoryRepository
	sales     repository.OrderRepository
	purchases repository.OrderRepository
	users     repository.UserRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			runner:    memory.NewTxRunner(store),
			products:  store.Products(),
			history:   store.History(),
			sales:     store.Orders(entity.OrderSale),
			purchases: store.Orders(entity.OrderPurchase),
			users:     store.Users(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema verificado")
	}
	return &storage{
		runner:    postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		history:   postgres.NewStockHistoryRepository(pool),
		sales:     postgres.NewOrderRepository(pool, entity.OrderSale),
		purchases: postgres.NewOrderRepository(pool, entity.OrderPurchase),
		users:     postgres.NewUserRepository(pool),
		close:     pool.Close,
	}, nil
}

func openCacheStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Store, func()) {
	if cfg.Redis.URL == "" {
		return cache.NewMemoryStore(), func() {}
	}
	client, err := cache.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis no disponible, se usa caché en memoria")
		return cache.NewMemoryStore(), func() {}
	}
	log.Info().Msg("caché Redis conectada")
	return cache.NewRedisStore(client, cfg.App.Name+":"), func() { _ = client.Close() }
}

func openPublisher(cfg *config.Config, log *logger.Logger) events.Publisher {
	if !cfg.Kafka.Enabled() {
		return events.NewLogPublisher(log.Component("events"))
	}
	pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID, log.Component("events"))
	if err != nil {
		log.Warn().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka no disponible, eventos solo al log")
		return events.NewLogPublisher(log.Component("events"))
	}
	log.Info().Str("topic", cfg.Kafka.Topic).Msg("publicador Kafka listo")
	return pub
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")
	if cfg.Session.Secret == "" {
		log.Fatal().Msg("SESSION_SECRET requerido")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a almacenamiento")
	}
	defer st.close()

	m := metrics.New()
	cacheStore, closeCache := openCacheStore(ctx, cfg, log)
	defer closeCache()
	stockCache := cache.NewStockListCache(cacheStore, cfg.Redis.TTL, log.Component("cache"), m)

	ledger := inventory.NewLedger(st.runner, stockCache, m)
	receipts := infrapdf.NewReceiptGenerator(cfg.App.Name)
	authUC := auth.NewAuthUseCase(st.users, auth.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL(),
		Issuer: cfg.Session.Issuer,
	})

	if cfg.Bootstrap.SuperadminEmail != "" {
		created, err := authUC.EnsureSuperadmin(ctx, cfg.Bootstrap.SuperadminEmail, cfg.Bootstrap.SuperadminPassword, cfg.Bootstrap.SuperadminName)
		if err != nil {
			log.Fatal().Err(err).Msg("crear superadmin inicial")
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.SuperadminEmail).Msg("superadmin inicial creado")
		}
	}

	publisher := openPublisher(cfg, log)
	relay := events.NewRelay(st.runner, publisher, cfg.Outbox.BatchSize, cfg.Outbox.Interval, log.Component("outbox"), m)
	if cfg.Storage.Driver == "memory" {
		// el TxRunner en memoria bloquea todo el almacén durante cada transacción
		relay.PublishOutsideTx()
	}
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(ctx)
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowCredentials: cfg.HTTP.CORSOrigins != "*",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:       cfg.App.Name,
		AuthUC:        authUC,
		ProductUC:     usecase.NewProductUseCase(st.products, st.history, ledger),
		UserUC:        usecase.NewUserUseCase(st.users),
		Sales:         orders.NewService(ledger, st.sales, st.products, receipts),
		Purchases:     orders.NewService(ledger, st.purchases, st.products, receipts),
		Ledger:        ledger,
		Inventory:     inventory.NewQueryUseCase(st.products, st.history, stockCache),
		Replenishment: inventory.NewReplenishmentUseCase(st.products, st.history, cfg.Inventory.LowStockThreshold),
		DashboardUC:   appanalytics.NewDashboardUseCase(st.sales, st.purchases, st.products, st.history, st.users, cfg.Inventory.LowStockThreshold),
		Metrics:       m,
		Cookie: httpRouter.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.SecureCookie,
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// El relay publica lo pendiente antes de cerrar el productor.
	stop()
	<-relayDone
	if n, err := relay.Drain(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar outbox")
	} else if n > 0 {
		log.Info().Int("events", n).Msg("outbox vaciado")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar publicador")
	}

	log.Info().Msg("aplicación detenida")
}
