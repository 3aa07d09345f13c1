package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/priyanshsolanki/medilink-assignment3/internal/appointment"
	"github.com/priyanshsolanki/medilink-assignment3/internal/availability"
	"github.com/priyanshsolanki/medilink-assignment3/internal/message"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Availability *availability.Service
	Messages     *message.Service
	Users        user.Repository
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	JWTSecret    string
	Env          string
	Version      string
	Log          zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Auth endpoints are open but throttled.
	authLimiter := NewRateLimiter(5, 10)
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/auth/register", registerHandler(cfg.Users, cfg.JWTSecret))
		r.Post("/auth/login", loginHandler(cfg.Users, cfg.JWTSecret))
	})

	// Everything else requires a session token.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))

		r.Get("/doctors", doctorDirectoryHandler(cfg.Availability))
		r.Get("/doctors/{doctorId}/availability", doctorScheduleHandler(cfg.Availability))

		r.Group(func(r chi.Router) {
			r.Use(RequireRoles(user.RoleDoctor))
			r.Post("/availability", createWindowHandler(cfg.Availability))
			r.Put("/availability/{id}", updateWindowHandler(cfg.Availability))
			r.Delete("/availability/{id}", deleteWindowHandler(cfg.Availability))
		})

		r.Post("/appointments", bookAppointmentHandler(cfg.Appointments))
		r.Get("/appointments/patient/{patientId}", listPatientAppointmentsHandler(cfg.Appointments))
		r.Get("/appointments/doctor/{doctorId}", listDoctorAppointmentsHandler(cfg.Appointments))
		r.Put("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Appointments))
		r.Put("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
		r.Put("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Appointments))
		r.Get("/appointments/{id}/call-link", callLinkHandler(cfg.Appointments))

		r.Post("/messages/send", sendMessageHandler(cfg.Messages))
		r.Get("/messages/conversation/{userId}", conversationHandler(cfg.Messages))
	})

	return r
}
