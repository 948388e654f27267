package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/shopstack/backend/internal/application/catalog"
	importapp "github.com/shopstack/backend/internal/application/import"
	inventoryapp "github.com/shopstack/backend/internal/application/inventory"
	orderingapp "github.com/shopstack/backend/internal/application/ordering"
	partnerapp "github.com/shopstack/backend/internal/application/partner"
	"github.com/shopstack/backend/internal/infrastructure/auth"
	"github.com/shopstack/backend/internal/infrastructure/cache"
	"github.com/shopstack/backend/internal/infrastructure/config"
	"github.com/shopstack/backend/internal/infrastructure/event"
	"github.com/shopstack/backend/internal/infrastructure/logger"
	"github.com/shopstack/backend/internal/infrastructure/persistence"
	"github.com/shopstack/backend/internal/interfaces/http/handler"
	"github.com/shopstack/backend/internal/interfaces/http/middleware"
	"github.com/shopstack/backend/internal/interfaces/http/router"
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Shopstack Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	ledgerRepo := persistence.NewGormStockLedgerRepository(db.DB)
	referralRepo := persistence.NewGormReferralRepository(db.DB)
	importHistoryRepo := persistence.NewGormImportHistoryRepository(db.DB)

	// Transaction scopes bind multi-repository writes to a single database
	// transaction
	orderingScope := persistence.NewGormOrderingTransactionScope(db.DB)
	stockScope := persistence.NewGormStockTransactionScope(db.DB)

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo)
	customerService := partnerapp.NewCustomerService(customerRepo)
	stockService := inventoryapp.NewStockService(productRepo, ledgerRepo, stockScope)
	orderService := orderingapp.NewOrderService(orderRepo, productRepo, customerRepo, orderingScope)
	orderService.SetTaxRate(decimal.NewFromFloat(cfg.Billing.TaxRate))
	paymentService := orderingapp.NewPaymentService(orderRepo, orderingScope)
	paymentService.SetLogger(log)
	referralService := partnerapp.NewReferralService(referralRepo, customerRepo, orderRepo)
	referralService.SetLogger(log)

	// A genuine Unpaid to Paid transition triggers referral reward evaluation
	paymentService.SetReferralProcessor(referralService)

	productImportService := importapp.NewProductImportService(productRepo, importHistoryRepo)
	productImportService.SetLogger(log)
	customerImportService := importapp.NewCustomerImportService(customerRepo, importHistoryRepo)
	customerImportService.SetLogger(log)
	importHistoryService := importapp.NewImportHistoryService(importHistoryRepo)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Low-stock notifications are wrapped with idempotency so redelivered
	// events cannot alert twice
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	thresholdHandler := inventoryapp.NewStockBelowThresholdHandler(log)
	eventBus.Subscribe(event.NewIdempotentHandler(thresholdHandler, idempotencyStore, log))
	log.Info("Event handlers registered",
		zap.Strings("stock_below_threshold_events", thresholdHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	productService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	customerHandler := handler.NewCustomerHandler(customerService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	stockHandler := handler.NewStockHandler(stockService)
	referralHandler := handler.NewReferralHandler(referralService)
	importHandler := handler.NewImportHandler(productImportService, customerImportService, importHistoryService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication guards the API when a signing secret is configured.
	// Tokens are issued by the identity provider in front of this service.
	if cfg.JWT.Secret != "" {
		jwtService := auth.NewJWTService(cfg.JWT)
		blacklist := newTokenBlacklist(cfg.Redis, log)
		r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			SkipPaths: []string{
				"/api/v1/ping",
				"/api/v1/system/ping",
				"/api/v1/system/info",
			},
			Logger: log,
		}))
		log.Info("JWT authentication enabled")
	} else {
		log.Warn("JWT secret not configured, API authentication disabled")
	}

	// Catalog domain (products)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)

	// Partner domain (customers, referrals)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/:id", customerHandler.GetByID)
	partnerRoutes.PUT("/customers/:id/contact", customerHandler.UpdateContact)
	partnerRoutes.GET("/customers/:id/referral-summary", referralHandler.ReferrerSummary)
	partnerRoutes.GET("/customers/:id/referrals", referralHandler.ListByReferrer)
	partnerRoutes.POST("/referrals/:id/mark-paid", referralHandler.MarkRewardPaid)

	// Ordering domain (orders, invoices, payment)
	orderingRoutes := router.NewDomainGroup("ordering", "/ordering")
	orderingRoutes.POST("/orders", orderHandler.PlaceOrder)
	orderingRoutes.GET("/orders/:id", orderHandler.GetOrder)
	orderingRoutes.GET("/invoices", orderHandler.ListInvoices)
	orderingRoutes.GET("/invoices/:invoice_number", orderHandler.GetInvoice)
	orderingRoutes.GET("/invoices/:invoice_number/lines", orderHandler.GetInvoiceLines)
	orderingRoutes.PUT("/invoices/:invoice_number/payment-status", paymentHandler.SetPaymentStatus)

	// Inventory domain (stock adjustments, ledger)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/products/:id/adjustments", stockHandler.Adjust)
	inventoryRoutes.GET("/products/:id/ledger", stockHandler.Ledger)
	inventoryRoutes.GET("/products/:id/ledger/audit", stockHandler.Audit)

	// Imports domain (CSV bulk imports)
	importRoutes := router.NewDomainGroup("imports", "/imports")
	importRoutes.POST("/products", importHandler.ImportProducts)
	importRoutes.POST("/customers", importHandler.ImportCustomers)
	importRoutes.GET("", importHandler.List)
	importRoutes.GET("/:id", importHandler.GetByID)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(catalogRoutes).
		Register(partnerRoutes).
		Register(orderingRoutes).
		Register(inventoryRoutes).
		Register(importRoutes).
		Register(systemRoutes)

	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newTokenBlacklist prefers Redis so revocations survive restarts, falling
// back to the in-memory implementation when Redis is unreachable.
func newTokenBlacklist(cfg config.RedisConfig, log *zap.Logger) auth.TokenBlacklist {
	blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable for token blacklist, using in-memory store", zap.Error(err))
		return auth.NewInMemoryTokenBlacklist()
	}
	return blacklist
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
