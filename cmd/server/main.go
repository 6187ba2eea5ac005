package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/pos/backend/internal/application/catalog"
	inventoryapp "github.com/pos/backend/internal/application/inventory"
	partnerapp "github.com/pos/backend/internal/application/partner"
	registerapp "github.com/pos/backend/internal/application/register"
	salesapp "github.com/pos/backend/internal/application/sales"
	domainregister "github.com/pos/backend/internal/domain/register"
	"github.com/pos/backend/internal/infrastructure/cache"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/event"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting POS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)

	// Event bus and cross-context handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Completed sale -> stock decrement
	saleCompletedHandler := inventoryapp.NewSaleCompletedHandler(productRepo, log)
	eventBus.Subscribe(saleCompletedHandler)

	log.Info("Event handlers registered",
		zap.Strings("sale_completed_events", saleCompletedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Checkout idempotency store. Redis keeps replay protection across
	// restarts; the in-memory store covers single-instance deployments.
	var checkoutStore registerapp.IdempotencyStore
	if cfg.Register.CheckoutIdempotency {
		factory := cache.NewCheckoutStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.Register.RequireRedis),
		)
		checkoutStore, err = factory.CreateStore()
		if err != nil {
			log.Fatal("Failed to create checkout idempotency store", zap.Error(err))
		}
	} else {
		checkoutStore = cache.NewInMemoryCheckoutStore()
	}
	defer func() {
		if closer, ok := checkoutStore.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Error("Error closing checkout store", zap.Error(err))
			}
		}
	}()

	// The ticket register works against in-memory product and customer
	// caches fed from the catalog and partner repositories.
	registerStore := domainregister.NewRegister(
		registerapp.NewRepositoryCatalogSource(productRepo),
		registerapp.NewRepositoryCustomerSource(customerRepo),
	)

	// Application services
	registerService := registerapp.NewRegisterService(registerStore, saleRepo, eventBus, checkoutStore, log)
	productService := catalogapp.NewProductService(productRepo)
	customerService := partnerapp.NewCustomerService(customerRepo)
	saleService := salesapp.NewSaleService(saleRepo)

	if cfg.Register.PreloadCaches {
		preloadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := registerService.LoadProducts(preloadCtx); err != nil {
			log.Warn("Product cache preload failed, register starts stale", zap.Error(err))
		}
		if err := registerService.LoadCustomers(preloadCtx); err != nil {
			log.Warn("Customer cache preload failed, register starts stale", zap.Error(err))
		}
		cancel()
	}

	// Background cache refresh
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	if cfg.Register.SyncInterval > 0 {
		go runCacheSync(syncCtx, registerService, cfg.Register.SyncInterval, log)
	}

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
		logger.GinMiddleware(log),
		gin.Recovery(),
	)

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewRegisterHandler(registerService)).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewCustomerHandler(customerService)).
		Register(handler.NewSalesHandler(saleService)).
		Register(handler.NewSystemHandler(db))
	r.Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopSync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runCacheSync refreshes the register's product and customer caches on a
// fixed interval. A failed refresh keeps the previous snapshot.
func runCacheSync(ctx context.Context, service *registerapp.RegisterService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := service.LoadProducts(ctx); err != nil {
				log.Warn("Product cache refresh failed", zap.Error(err))
			}
			if err := service.LoadCustomers(ctx); err != nil {
				log.Warn("Customer cache refresh failed", zap.Error(err))
			}
		}
	}
}
