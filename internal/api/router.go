package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinicport/patient-portal/internal/chat"
	"github.com/clinicport/patient-portal/internal/scheduling"
	"github.com/clinicport/patient-portal/pkg/logging"
)

type RouterConfig struct {
	Service        *scheduling.Service
	ChatHandler    *chat.Handler
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	Logger         *logging.Logger
	MetricsHandler http.Handler
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	// Health endpoints
	if cfg.PgPool != nil && cfg.Redis != nil {
		health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Scheduling endpoints consumed by the conversation agent
	r.Route("/api", func(r chi.Router) {
		r.Get("/specialties", listSpecialtiesHandler(cfg.Service))
		r.Get("/availability", checkAvailabilityHandler(cfg.Service))
		r.Post("/appointments", bookAppointmentHandler(cfg.Service))
		r.Get("/appointments/{code}", getAppointmentByCodeHandler(cfg.Service))
		r.Post("/appointments/validate", validateDetailsHandler(cfg.Service))

		if cfg.ChatHandler != nil {
			r.Get("/chat/{sessionID}/messages", cfg.ChatHandler.ListMessages)
			r.Post("/chat/{sessionID}/messages", cfg.ChatHandler.AddMessage)
		}
	})

	return r
}
