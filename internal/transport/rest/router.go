package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-backoffice/api"
	"github.com/frahmantamala/hr-backoffice/internal/auth"
	"github.com/frahmantamala/hr-backoffice/internal/employee"
	"github.com/frahmantamala/hr-backoffice/internal/kpi"
	"github.com/frahmantamala/hr-backoffice/internal/payroll"
	"github.com/frahmantamala/hr-backoffice/internal/transport/middleware"
	"github.com/frahmantamala/hr-backoffice/internal/transport/swagger"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the HTTP handlers mounted under /api/v1. Nil handlers are skipped.
type Handlers struct {
	Auth     *auth.Handler
	Employee *employee.Handler
	Payroll  *payroll.Handler
	Workflow *workflow.Handler
	KPI      *kpi.Handler
}

type RouterConfig struct {
	AllowedOrigins string
	// Validator checks requests against the OpenAPI document when set.
	Validator func(http.Handler) http.Handler
	// HealthChecks are pinged by /health next to postgres.
	HealthChecks map[string]Check
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cfg.HealthChecks)
	staff := middleware.RequireStaff(logger)

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPISpec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.Validator != nil {
			r.Use(cfg.Validator)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/me", h.Auth.Me)

			if h.Employee != nil {
				pr.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.List)
					er.Get("/{id}", h.Employee.Get)

					er.Group(func(sr chi.Router) {
						sr.Use(staff)
						sr.Post("/", h.Employee.Onboard)
						sr.Post("/{id}/terminate", h.Employee.Terminate)
						sr.Patch("/{id}/department", h.Employee.Reassign)
					})
				})
			}

			// Resolution rights are checked by the workflow service against the actor.
			if h.Workflow != nil {
				pr.Route("/requests", func(wr chi.Router) {
					wr.Get("/", h.Workflow.List)
					wr.Post("/", h.Workflow.Submit)
					wr.Get("/counts", h.Workflow.Counts)
					wr.Get("/{kind}/{id}", h.Workflow.Get)
					wr.Patch("/{kind}/{id}/status", h.Workflow.UpdateStatus)
				})
			}

			if h.Payroll != nil {
				pr.Route("/payroll", func(pyr chi.Router) {
					pyr.Use(staff)
					pyr.Get("/", h.Payroll.List)
					pyr.Post("/generate", h.Payroll.Generate)
					pyr.Put("/records", h.Payroll.Record)
					pyr.Get("/employees/{id}", h.Payroll.ListForEmployee)
					pyr.Patch("/employees/{employeeID}/{year}/{month}/processed", h.Payroll.MarkProcessed)
				})
			}

			if h.KPI != nil {
				pr.Route("/kpi", func(kr chi.Router) {
					kr.Use(staff)
					kr.Get("/summary", h.KPI.Summary)
					kr.Get("/headcount/departments", h.KPI.HeadcountByDepartment)
					kr.Get("/gender", h.KPI.GenderDistribution)
					kr.Get("/attendance", h.KPI.AttendanceDistribution)
					kr.Get("/payroll-totals", h.KPI.PayrollTotals)
				})
			}
		})
	})
}
