package router

import (
	"time"

	"github.com/kantman01/ai-stock-management-sub000/internal/config"
	"github.com/kantman01/ai-stock-management-sub000/internal/handler"
	"github.com/kantman01/ai-stock-management-sub000/internal/infra"
	"github.com/kantman01/ai-stock-management-sub000/internal/middleware"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"
	"github.com/kantman01/ai-stock-management-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	recommender := infra.NewRecommenderClient(cfg.RecommenderURL, cb)

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	supplierStockRepo := repository.NewSupplierStockRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	supplierOrderRepo := repository.NewSupplierOrderRepository(db)
	actionRepo := repository.NewAIActionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — post-commit side-effect sink for every service
	dispatcher := worker.NewDispatcher(rdb)

	ledgerSvc := service.NewLedgerService(productRepo, movementRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, ledgerSvc, dispatcher, dispatcher)
	supplierOrderSvc := service.NewSupplierOrderService(supplierOrderRepo, productRepo, supplierRepo, supplierStockRepo, ledgerSvc, dispatcher)
	replenishmentSvc := service.NewReplenishmentService(supplierOrderRepo, productRepo, actionRepo, recommender, dispatcher)
	pricingSvc := service.NewPricingService(productRepo, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(orderSvc)
	supplierOrdersH := handler.NewSupplierOrdersHandler(supplierOrderSvc)
	stockH := handler.NewStockHandler(ledgerSvc)
	replenishmentH := handler.NewReplenishmentHandler(replenishmentSvc)
	barcodeH := handler.NewBarcodeHandler(supplierOrderSvc)
	pricingH := handler.NewPricingHandler(pricingSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, cb))

	// Price check — no auth required (point-of-sale terminals)
	r.GET("/v1/price/:sku", pricingH.BySKU)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: staff, admin, supplier — declared per-endpoint
		orders := v1.Group("/orders", middleware.RequireRole("staff", "admin"))
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.PATCH("/:id/status", ordersH.UpdateStatus)
			orders.DELETE("/:id", ordersH.Cancel)
		}

		// Suppliers see and advance their own orders; the service layer gates
		// per-order ownership and transition direction.
		so := v1.Group("/supplier-orders", middleware.RequireRole("staff", "admin", "supplier"))
		{
			so.GET("", supplierOrdersH.List)
			so.GET("/:id", supplierOrdersH.Get)
			so.PATCH("/:id/status", supplierOrdersH.UpdateStatus)
		}
		v1.POST("/supplier-orders", middleware.RequireRole("staff", "admin"), supplierOrdersH.Create)
		v1.POST("/supplier-orders/:id/complete", middleware.RequireRole("staff", "admin"), supplierOrdersH.Complete)

		stock := v1.Group("/stock", middleware.RequireRole("staff", "admin"))
		{
			stock.POST("/movements", stockH.CreateMovement)
			stock.GET("/movements", stockH.ListMovements)
		}

		v1.POST("/replenishment/run", middleware.RequireRole("admin"), replenishmentH.Run)
		v1.POST("/barcode/scan", middleware.RequireRole("staff", "admin"), barcodeH.Scan)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
