// Package api serves the planner over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/finplanner/internal/config"
	"github.com/sells-group/finplanner/internal/service"
)

// NewRouter builds the HTTP handler for svc.
func NewRouter(svc *service.PlanService, cfg config.ServerConfig) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Route("/v1", func(r chi.Router) {
		if cfg.RatePerMinute > 0 {
			r.Use(newClientLimiter(cfg.RatePerMinute, cfg.Burst).middleware)
		}

		r.Post("/plan", h.previewPlan)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", h.getUser)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.putProfile)

			r.Get("/goals", h.listGoals)
			r.Post("/goals", h.createGoal)
			r.Put("/goals/{goalID}", h.updateGoal)
			r.Delete("/goals/{goalID}", h.deleteGoal)

			r.Post("/plans", h.generatePlan)
			r.Get("/plans", h.listPlans)
			r.Get("/plans/{planID}", h.getPlan)
			r.Get("/plans/{planID}/export", h.exportPlan)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
