package router

import (
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/config"
	"github.com/Jefferson1994/AppControlBarberias/internal/handler"
	"github.com/Jefferson1994/AppControlBarberias/internal/infra"
	"github.com/Jefferson1994/AppControlBarberias/internal/middleware"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"
	"github.com/Jefferson1994/AppControlBarberias/internal/service"
	"github.com/Jefferson1994/AppControlBarberias/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sriClient *infra.SRIClient, dispatcher *worker.Dispatcher) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	renderer := infra.NewReceiptRenderer(cfg.PDFStoragePath)
	citizens := infra.NewCitizenClient(cfg.CitizenLookupURL)
	receiptMailer := worker.NewReceiptEnqueuer(dispatcher)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	refDataRepo := repository.NewRefDataRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	businessSvc := service.NewBusinessService(businessRepo, userRepo, citizens)
	catalogSvc := service.NewCatalogService(catalogRepo, businessRepo)
	ledgerSvc := service.NewLedgerService(shiftRepo, businessRepo, refDataRepo)
	reconciler := service.NewReconcileEngine(shiftRepo, saleRepo, businessRepo, catalogRepo, refDataRepo)
	shiftSvc := service.NewShiftService(shiftRepo, businessRepo, refDataRepo, ledgerSvc, reconciler, cfg.OpeningWindowMinutes)
	sequenceSvc := service.NewSequenceService(counterRepo)
	saleSvc := service.NewSaleService(saleRepo, shiftRepo, catalogRepo, businessRepo, refDataRepo,
		ledgerSvc, sequenceSvc, sriClient, renderer, receiptMailer)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	businessH := handler.NewBusinessHandler(businessSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	shiftH := handler.NewShiftHandler(shiftSvc, ledgerSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	healthH := handler.NewHealthHandler(db, rdb, sriClient)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes — business-scoped permissions are resolved from the
	// employee binding inside each service, not from the token.
	v1 := r.Group("/v1", middleware.JWTAuth(authSvc))
	{
		businesses := v1.Group("/businesses")
		{
			businesses.POST("", businessH.Create)
			businesses.GET("", businessH.ListOwned)
			businesses.GET("/:id", businessH.Get)
			businesses.POST("/:id/employees", businessH.HireEmployee)
			businesses.GET("/:id/employees", businessH.ListEmployees)
			businesses.POST("/:id/customers", businessH.CreateCustomer)

			businesses.POST("/:id/products", catalogH.CreateProduct)
			businesses.GET("/:id/products", catalogH.ListProducts)
			businesses.PUT("/:id/products/:productId", catalogH.UpdateProduct)
			businesses.DELETE("/:id/products/:productId", catalogH.DeactivateProduct)
			businesses.POST("/:id/services", catalogH.CreateService)
			businesses.GET("/:id/services", catalogH.ListServices)
			businesses.DELETE("/:id/services/:serviceId", catalogH.DeactivateService)
		}

		shifts := v1.Group("/shifts")
		{
			shifts.POST("/open", shiftH.Open)
			shifts.POST("/close", shiftH.Close)
			shifts.POST("/movements", shiftH.RecordMovement)
			shifts.GET("/:id/report", shiftH.Report)
			shifts.GET("", shiftH.List)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", saleH.Process)
			sales.GET("", saleH.List)
			sales.GET("/:id", saleH.Get)
		}
	}

	return r
}
