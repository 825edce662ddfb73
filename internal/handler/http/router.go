package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/health"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/middleware"
)

// RouterConfig bundles everything NewRouter needs.
type RouterConfig struct {
	BusinessService    *service.BusinessService
	ReviewService      *service.ReviewService
	ReservationService *service.ReservationService
	NewsletterService  *service.NewsletterService
	HealthHandler      *health.Handler
	CORS               middleware.CORSConfig
	RateLimitRPS       int
	RateLimitBurst     int
	PprofEnabled       bool
	PprofAllowedCIDRs  []string
	Logger             *slog.Logger
}

// NewRouter creates a chi router with all Foodeez API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
	}
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("foodeez-api"))

	// Operational endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, cfg.Logger)
	}

	businessHandler := NewBusinessHandler(cfg.BusinessService, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.ReviewService, cfg.Logger)
	reservationHandler := NewReservationHandler(cfg.ReservationService, cfg.Logger)
	newsletterHandler := NewNewsletterHandler(cfg.NewsletterService, cfg.Logger)

	r.Route("/api/v1/businesses", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", businessHandler.ListBusinesses)
		r.Get("/featured", businessHandler.ListFeatured)
		r.Post("/", businessHandler.RegisterBusiness)
		r.Get("/{slug}", businessHandler.GetBusiness)

		r.Route("/{slug}/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.ListReviews)
			r.Post("/", reviewHandler.SubmitReview)
		})

		r.Route("/{slug}/reservations", func(r chi.Router) {
			r.Get("/", reservationHandler.ListReservations)
			r.Post("/", reservationHandler.CreateReservation)
		})
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/{id}/like", reviewHandler.LikeReview)
		r.Patch("/{id}/approval", reviewHandler.SetApproval)
	})

	r.Route("/api/v1/newsletter/subscriptions", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", newsletterHandler.Subscribe)
		r.Delete("/{email}", newsletterHandler.Unsubscribe)
	})

	return r
}
