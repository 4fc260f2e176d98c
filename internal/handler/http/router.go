package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/hroffice/absence-backend-go/internal/handler/http/middleware"
	"github.com/hroffice/absence-backend-go/internal/pkg/jwt"
)

func NewRouter(logger *slog.Logger, jwtService jwt.Service, absenceHandler AbsenceHandler, notificationHandler NotificationHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/absences", func(r chi.Router) {
				r.Post("/", absenceHandler.Submit)
				r.Get("/", absenceHandler.List)
				r.Post("/bulk", absenceHandler.Bulk)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", absenceHandler.GetByID)
					r.Get("/approvals", absenceHandler.GetApprovalTrail)
					r.Post("/approve", absenceHandler.Approve)
					r.Post("/reject", absenceHandler.Reject)
					r.Post("/withdraw", absenceHandler.Withdraw)
				})
			})

			r.Route("/quotas", func(r chi.Router) {
				r.Get("/", absenceHandler.GetQuotas)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/adjust", absenceHandler.AdjustQuota)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Get("/stream", notificationHandler.Stream)
				r.Post("/read", notificationHandler.MarkAsRead)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("absence-backend\n"))
	})

	return r
}
