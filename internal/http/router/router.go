package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/honeyjobs-backend/internal/config"
	"github.com/ignatzorin/honeyjobs-backend/internal/http/handlers"
	"github.com/ignatzorin/honeyjobs-backend/internal/http/middleware"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/handler"
	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
	"github.com/ignatzorin/honeyjobs-backend/internal/service"
)

// Handlers - все хэндлеры, которые монтирует роутер.
type Handlers struct {
	Health  *handlers.HealthHandler
	WS      *handlers.WSHandler
	Escrow  *handler.EscrowHandler
	Webhook *handler.WebhookHandler
	Honey   *handler.HoneyHandler
	Billing *handler.BillingHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.AccessTokenParser,
	limiterStore limiter.Store,
	httpMetrics *metrics.HTTP,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware(httpMetrics))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/ws", h.WS.Handle)

	// Вебхуки провайдера: без авторизации, подлинность проверяется повторным запросом платежа.
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/escrow", h.Webhook.Escrow)
		webhooks.POST("/honey-drops", h.Webhook.HoneyDrops)
		webhooks.POST("/payment-verification", h.Webhook.PaymentVerification)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	// Операции, создающие платежи у провайдера, ограничиваем отдельно.
	paymentLimit := middleware.RateLimitMiddleware(limiterStore, "payments", cfg.RateLimitLimit, cfg.RateLimitPeriod)
	clientsOnly := middleware.RequireRole(service.RoleClient)
	freelancersOnly := middleware.RequireRole(service.RoleFreelancer)

	contracts := protected.Group("/contracts/:id", middleware.UUIDValidator("id"))
	{
		contracts.GET("/escrow", h.Escrow.Get)
		contracts.POST("/escrow", clientsOnly, paymentLimit, h.Escrow.Initiate)
		contracts.POST("/escrow/release", clientsOnly, h.Escrow.Release)
	}

	honey := protected.Group("/honey")
	{
		honey.GET("/balance", h.Honey.Balance)
		honey.GET("/transactions", h.Honey.Transactions)
		honey.POST("/purchase", paymentLimit, h.Honey.Purchase)
	}

	jobs := protected.Group("/jobs/:id", middleware.UUIDValidator("id"))
	{
		jobs.POST("/bids", freelancersOnly, h.Honey.Bid)
		jobs.POST("/applicants/reject", clientsOnly, h.Honey.RejectApplicants)
	}

	protected.POST("/coupons/apply", middleware.RateLimitMiddleware(limiterStore, "coupons", cfg.RateLimitLimit, cfg.RateLimitPeriod), h.Billing.ApplyCoupon)
	protected.POST("/billing/verification", clientsOnly, paymentLimit, h.Billing.StartVerification)
	protected.GET("/earnings", h.Billing.Earnings)

	return r
}
