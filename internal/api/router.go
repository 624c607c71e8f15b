package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Compass/internal/config"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

func NewRouter(s store.Store, h hermes.Client, engine *scoring.Engine, snap *CountrySnapshot, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	countries := NewCountriesHandler(s, h, engine.Spec(), snap, logger)
	decision := NewDecisionHandler(s, h, engine, snap, cfg.DefaultWeights(), logger)
	prefs := NewPreferencesHandler(s, h, engine.Spec(), logger)
	ref := NewReferenceHandler(engine, snap)
	report := NewReportHandler(s, engine, snap, logger)
	admin := NewAdminHandler(s, snap)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", countries.List)
		r.Post("/countries", countries.Create)
		r.Post("/countries/bulk", countries.Bulk)
		r.Get("/countries/{id}", countries.Get)
		r.Put("/countries/{id}", countries.Update)
		r.Delete("/countries/{id}", countries.Delete)
		r.Get("/export", countries.Export)

		r.Post("/decision/analyze", decision.Analyze)
		r.Post("/sensitivity/analyze", decision.Sensitivity)

		r.Post("/preferences", prefs.Save)
		r.Get("/preferences/{session_id}", prefs.Get)
		r.Get("/history/{session_id}", prefs.History)
		r.Get("/report/{session_id}", report.Report)

		r.Post("/compare", ref.Compare)
		r.Get("/method", ref.Method)
		r.Get("/criteria", ref.Criteria)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Post("/cache/flush", admin.FlushCache)
		})
	})

	return r
}

func NewMetricsRouter(s store.Store) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s != nil {
			if err := s.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
