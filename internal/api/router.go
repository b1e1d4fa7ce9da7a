package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/auth"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/booking"
	bookingHttp "github.com/dinhdungweb/nerdsociety-v3-sub002/internal/booking/http"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/payment"
	paymentHttp "github.com/dinhdungweb/nerdsociety-v3-sub002/internal/payment/http"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing"
	pricingHttp "github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing/http"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
	resourceHttp "github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource/http"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward"
	rewardHttp "github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	ResService     resource.Service
	PricingService pricing.Service
	BookingService booking.Service
	RewardService  reward.Service
	Reconciler     *payment.Reconciler

	JWTManager *auth.JWTManager

	WebhookSecret      string
	WebhookSuccessCode string

	MetricsRegistry *prometheus.Registry
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Front desk console
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Webhook-Signature"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.MetricsRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.MetricsRegistry, promhttp.HandlerOpts{})))
	}

	// authMiddleware: Validates if the request contains a valid staff JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	resourceHandler := resourceHttp.NewHandler(cfg.ResService, cfg.BookingService)
	pricingHandler := pricingHttp.NewHandler(cfg.PricingService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	rewardHandler := rewardHttp.NewHandler(cfg.RewardService)
	paymentHandler := paymentHttp.NewHandler(cfg.Reconciler, cfg.JWTManager, cfg.WebhookSecret, cfg.WebhookSuccessCode)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		resourceHttp.RegisterRoutes(v1, resourceHandler, authMiddleware)
		pricingHttp.RegisterRoutes(v1, pricingHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		rewardHttp.RegisterRoutes(v1, rewardHandler, authMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler)
	}

	return r
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
