package http

import (
	"log/slog"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	FrontendURL string
	Logger      *slog.Logger
	LogLevel    slog.Level
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, employeeHandler EmployeeHandler, wfhHandler WfhHandler, calendarHandler CalendarHandler, reportHandler ReportHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/me", employeeHandler.GetMe)

			r.Route("/requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionWfhViewOwn)).Get("/", wfhHandler.ListRequests)
				r.With(middleware.RequirePermission(user.PermissionWfhCreate)).Post("/", wfhHandler.SubmitRequest)

				r.Route("/{id}", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionWfhViewOwn))
						r.Get("/", wfhHandler.GetRequest)
						r.Get("/attachment", wfhHandler.GetAttachment)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionWfhCreate))
						r.Put("/", wfhHandler.EditRequest)
						r.Delete("/", wfhHandler.CancelRequest)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionWfhApprove))
						r.Post("/approve", wfhHandler.ApproveRequest)
						r.Post("/reject", wfhHandler.RejectRequest)
					})
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionWfhViewOwn))
				r.Get("/", calendarHandler.GetCalendar)
				r.Get("/details", calendarHandler.GetDateDetails)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/summary", reportHandler.GetSummary)
				r.Get("/breakdown", reportHandler.GetBreakdown)
				r.Get("/hierarchy", reportHandler.GetTeamHierarchy)
			})
		})
	})
	return r
}
