package internal

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onlinesync/internal/controllers"
	"onlinesync/internal/providers"
	"onlinesync/internal/structures"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
	summaryPath = "/api/summary"
)

// InitRoutes builds the watch-mode status server handler. /metrics is only
// mounted when metrics are enabled.
func InitRoutes(apiController *controllers.ApiController, healthController *controllers.HealthController, metrics providers.MetricsProviderInterface, conf *structures.Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, healthController.Health)
	mux.HandleFunc(summaryPath, apiController.GetSummary)
	if conf.Metrics.Enabled {
		mux.Handle(metricsPath, promhttp.Handler())
	}
	return providers.MetricsMiddleware(metrics, mux, healthPath, summaryPath, metricsPath)
}
