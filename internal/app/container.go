package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/api"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/auth"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/booking"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/config"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/jobs"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/metrics"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/notify"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/payment"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Jobs       *jobs.Runner
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *Container {
	// Init components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)
	notifier := notify.NewLogNotifier(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Resource module
	resRepo := resource.NewPgxRepository(pool)
	resService := resource.NewService(resRepo)

	// Pricing module
	priRepo := pricing.NewPgxRepository(pool)
	priService := pricing.NewService(priRepo, cfg.PricingCacheTTL)

	// Reward module
	rewRepo := reward.NewPgxRepository(pool)
	rewService := reward.NewService(rewRepo)

	// Payment module (the service doubles as the booking module's
	// payment recorder and deposit settler)
	payRepo := payment.NewPgxRepository(pool)
	payService := payment.NewService(payRepo)

	// Booking module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(
		bookingRepo,
		resService,
		priService,
		rewService,
		payService,
		payService,
		notifier,
		m,
		logger,
		booking.Config{
			RefCodePrefix: cfg.RefCodePrefix,
			OpenTime:      cfg.OpenTime,
			CloseTime:     cfg.CloseTime,
			HoldWindow:    cfg.HoldWindow,
			OvertimeGrace: cfg.OvertimeGrace,
		},
	)

	// Reconciler for inbound bank-transfer events
	reconciler := payment.NewReconciler(payRepo, bookingService, notifier, m, logger, cfg.RefCodePrefix)

	// Background jobs
	alertStore := notify.NewPgxAlertStore(pool)
	runner := jobs.NewRunner(logger, jobs.Tasks(jobs.Deps{
		Bookings:   bookingService,
		Repo:       bookingRepo,
		Alerts:     alertStore,
		Notifier:   notifier,
		Metrics:    m,
		Logger:     logger,
		HoldWindow: cfg.HoldWindow,
	})...)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		ResService:         resService,
		PricingService:     priService,
		BookingService:     bookingService,
		RewardService:      rewService,
		Reconciler:         reconciler,
		JWTManager:         jwtManager,
		WebhookSecret:      cfg.WebhookSecret,
		WebhookSuccessCode: cfg.WebhookSuccessCode,
		MetricsRegistry:    registry,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Jobs:       runner,
	}
}
