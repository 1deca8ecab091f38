package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"repricer/internal/config"
)

type PricingHandlers interface {
	RunPricingPass(w http.ResponseWriter, r *http.Request)
	SetActivation(w http.ResponseWriter, r *http.Request)
	Quote(w http.ResponseWriter, r *http.Request)
}

type BotSettingsHandlers interface {
	HandleGetBotSettings(w http.ResponseWriter, r *http.Request)
	HandleUpdateBotSettings(w http.ResponseWriter, r *http.Request)
	HandleSyncCatalog(w http.ResponseWriter, r *http.Request)
}

func NewRouter(pricing PricingHandlers, settings BotSettingsHandlers, cfg config.ServerConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
	})

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(secureMiddleware.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Batch endpoints fan out to the competitor feed and marketplace, so they
	// are rate limited per client.
	batchLimiter := httprate.Limit(cfg.RateLimit, cfg.RateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "RATE_LIMITED",
				"message": "too many batch requests, retry later",
			})
		}),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pricing", func(r chi.Router) {
			r.Post("/quote", pricing.Quote)
			r.Group(func(r chi.Router) {
				r.Use(batchLimiter)
				r.Post("/passes", pricing.RunPricingPass)
				r.Post("/activation", pricing.SetActivation)
			})
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/catalog", settings.HandleSyncCatalog)
			r.Get("/{productId}/bot-settings", settings.HandleGetBotSettings)
			r.Put("/{productId}/bot-settings", settings.HandleUpdateBotSettings)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", chimw.GetReqID(r.Context())),
			)
		})
	}
}
