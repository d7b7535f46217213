package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/config"
	"github.com/ignatzorin/honeyjobs-backend/internal/db"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/honeyjobs-backend/internal/http/handlers"
	"github.com/ignatzorin/honeyjobs-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/honeyjobs-backend/internal/http/router"
	"github.com/ignatzorin/honeyjobs-backend/internal/infrastructure/payment/mollie"
	"github.com/ignatzorin/honeyjobs-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/handler"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
	"github.com/ignatzorin/honeyjobs-backend/internal/service"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/coupon"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/earning"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/escrow"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/honey"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/verification"
	"github.com/ignatzorin/honeyjobs-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка миграций")
	}

	limiterStore, redisClient, err := middleware.NewLimiterStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить rate limiter")
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Метрики.
	paymentMetrics := metrics.NewPayments(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTP(prometheus.DefaultRegisterer)

	verificationAmount, err := valueobject.NewMoney(cfg.VerificationAmount, cfg.Currency)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: некорректная сумма проверочного платежа")
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	gateway := mollie.NewClient(cfg.MollieBaseURL, cfg.MollieAPIKey, cfg.MollieTimeout, paymentMetrics)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Репозитории.
	contractRepo := persistence.NewContractRepository(dbConn)
	feeProfileRepo := persistence.NewFeeProfileRepository(dbConn)
	earningRepo := persistence.NewEarningRepository(dbConn)
	jobRepo := persistence.NewJobRepository(dbConn)
	honeyRepo := persistence.NewHoneyRepository(dbConn)
	couponRepo := persistence.NewCouponRepository(dbConn)

	// Use cases.
	initiateEscrowUC := escrow.NewInitiateEscrowUseCase(contractRepo, feeProfileRepo, gateway, cfg, paymentMetrics)
	escrowWebhookUC := escrow.NewProcessEscrowWebhookUseCase(contractRepo, gateway, hub, paymentMetrics)
	releaseEscrowUC := escrow.NewReleaseEscrowUseCase(contractRepo, feeProfileRepo, earningRepo, gateway, hub, paymentMetrics)
	getEscrowUC := escrow.NewGetEscrowUseCase(contractRepo)

	reconciler := escrow.NewReconciler(contractRepo, escrowWebhookUC, cfg.EscrowReconcileAfter, paymentMetrics)
	if err := reconciler.Start(cfg.EscrowReconcileSchedule); err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось запустить сверку эскроу")
	}
	defer reconciler.Stop()

	honeyBalanceUC := honey.NewGetBalanceUseCase(honeyRepo)
	honeyTransactionsUC := honey.NewListTransactionsUseCase(honeyRepo)
	spendOnBidUC := honey.NewSpendOnBidUseCase(honeyRepo, jobRepo)
	rejectApplicantsUC := honey.NewRejectApplicantsUseCase(honeyRepo, jobRepo, hub)
	purchaseUC := honey.NewInitiatePurchaseUseCase(gateway, cfg)
	purchaseWebhookUC := honey.NewProcessPurchaseWebhookUseCase(honeyRepo, gateway, hub, paymentMetrics)

	applyCouponUC := coupon.NewApplyCouponUseCase(couponRepo)
	startVerificationUC := verification.NewStartPaymentVerificationUseCase(feeProfileRepo, gateway, cfg, verificationAmount)
	verificationWebhookUC := verification.NewProcessVerificationWebhookUseCase(feeProfileRepo, gateway, hub, paymentMetrics)
	earningsUC := earning.NewListMyEarningsUseCase(earningRepo)

	// HTTP хэндлеры.
	healthChecks := map[string]httpHandlers.Pinger{"database": dbConn}
	if redisClient != nil {
		healthChecks["redis"] = redisPinger{client: redisClient}
	}

	handlers := httpRouter.Handlers{
		Health:  httpHandlers.NewHealthHandler(healthChecks),
		WS:      httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Escrow:  handler.NewEscrowHandler(initiateEscrowUC, releaseEscrowUC, getEscrowUC),
		Webhook: handler.NewWebhookHandler(escrowWebhookUC, purchaseWebhookUC, verificationWebhookUC),
		Honey:   handler.NewHoneyHandler(honeyBalanceUC, honeyTransactionsUC, spendOnBidUC, rejectApplicantsUC, purchaseUC),
		Billing: handler.NewBillingHandler(applyCouponUC, startVerificationUC, earningsUC),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager, limiterStore, httpMetrics)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGoWithContext(ctx, "http.shutdown", func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithFields(logrus.Fields{"port": cfg.HTTPPort, "env": cfg.Env}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}
}

// redisPinger приводит клиент redis к проверке /health.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
