package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/config"
	"celebrity-subscription/internal/infra/metrics"
	"celebrity-subscription/internal/usecase"
)

func init() {
	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// RateLimiter is the submission throttle. *redis.RateLimiter satisfies it.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Deps lists the use cases behind the HTTP surface. Limiter may be nil.
type Deps struct {
	Payments      usecase.PaymentUseCase
	Promotions    usecase.PromotionUseCase
	Expiry        usecase.ExpiryUseCase
	Subscriptions usecase.SubscriptionUseCase
	Pricing       usecase.PricingUseCase
	Admins        usecase.AdminUseCase
	Stats         usecase.StatsUseCase
	Limiter       RateLimiter
}

type Server struct {
	deps Deps
	cfg  config.HTTPConfig
	dev  bool
	log  *zerolog.Logger
}

func NewServer(deps Deps, cfg config.HTTPConfig, dev bool, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Server{deps: deps, cfg: cfg, dev: dev, log: logger}
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}),
		optionsOK,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Timeout(s.cfg.RequestTimeout))

		r.Post("/payments", s.handleSubmitPayment)
		r.Get("/pricing", s.handleListPricing)
		r.Get("/celebrities/{id}/subscription", s.handleSubscriptionStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(s.deps.Admins))
			r.Get("/payments", s.handleListPayments)
			r.Post("/payments/verify", s.handleVerifyPayment)
			r.Post("/promotions", s.handlePromotion)
			r.Post("/subscriptions/expire", s.handleForceExpire)
			r.Put("/pricing", s.handleSetPrice)
			r.Get("/stats", s.handleStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Error: "method not allowed"})
	})
	return r
}

// optionsOK answers OPTIONS requests that are not CORS preflights.
func optionsOK(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
