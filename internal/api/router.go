package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gi-t-ansari/babysteps-backend/internal/clinic"
)

type RouterConfig struct {
	Service *clinic.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/doctors", func(r chi.Router) {
		r.Post("/", createDoctorHandler(cfg.Service))
		r.Get("/", listDoctorsHandler(cfg.Service))
		r.Get("/{id}", getDoctorHandler(cfg.Service))
		r.Put("/{id}", updateDoctorHandler(cfg.Service))
		r.Delete("/{id}", deleteDoctorHandler(cfg.Service))
		r.Get("/{id}/slots", doctorSlotsHandler(cfg.Service))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(cfg.Service))
		r.Get("/", listAppointmentsHandler(cfg.Service))
		r.Get("/{id}", getAppointmentHandler(cfg.Service))
		r.Put("/{id}", updateAppointmentHandler(cfg.Service))
		r.Delete("/{id}", deleteAppointmentHandler(cfg.Service))
	})

	return r
}
