package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	"github.com/temirlan/finance-dashboard-api/internal/api/handler/router"
	"github.com/temirlan/finance-dashboard-api/internal/scheduler"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/authenticating"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/reporting"
	"github.com/temirlan/finance-dashboard-api/pkg/middleware"
)

func Healthcheck(schedulerService *scheduler.ReportSchedulerService) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(schedulerService),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Reports(
	reportRepo repository.ReportRepository,
	recordRepo repository.GenerationRecordRepository,
	runner reporting.ReportRunner,
) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/reports",
			Method:      http.MethodPost,
			Handler:     CreateReport(reportRepo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/reports",
			Method:      http.MethodGet,
			Handler:     ListReports(reportRepo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/reports/:id/run",
			Method:      http.MethodPost,
			Handler:     RunReport(reportRepo, runner),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/reports/:id/history",
			Method:      http.MethodGet,
			Handler:     ReportHistory(reportRepo, recordRepo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Scheduler(service *scheduler.ReportSchedulerService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/scheduler/status",
			Method:      http.MethodGet,
			Handler:     SchedulerStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/scheduler/scan",
			Method:      http.MethodPost,
			Handler:     TriggerScan(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
