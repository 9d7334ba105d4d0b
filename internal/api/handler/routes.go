package handler

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/ads-sync-api/internal/api/handler/router"
	"github.com/vfg2006/ads-sync-api/pkg/middleware"
)

func Healthcheck(pinger Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(pinger),
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

func Sync(service SyncOperator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/sync/status",
			Method:      http.MethodGet,
			Handler:     GetSyncStatus(service),
			Middlewares: []alice.Constructor{middleware.AllRoles()},
		},
		{
			Path:        "/v1/organizations/:id/sync-config",
			Method:      http.MethodPut,
			Handler:     UpdateSyncConfiguration(service),
			Middlewares: []alice.Constructor{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/organizations/:id/sync/run",
			Method:      http.MethodPost,
			Handler:     RunSync(service),
			Middlewares: []alice.Constructor{middleware.AdminOrOperator()},
		},
		{
			Path:        "/v1/organizations/:id/reconcile",
			Method:      http.MethodPost,
			Handler:     RunReconciliation(service),
			Middlewares: []alice.Constructor{middleware.AdminOrOperator()},
		},
	}
}
