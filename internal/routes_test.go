package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"onlinesync/internal/controllers"
	"onlinesync/internal/models"
	"onlinesync/internal/structures"
	"onlinesync/internal/testutil"
)

type routeTestSource struct{}

func (routeTestSource) Last() (models.Summary, bool) { return models.Summary{}, false }

func newTestRoutes(metricsEnabled bool) http.Handler {
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: metricsEnabled}}
	ac := controllers.NewApiController(&testutil.MockLogger{}, routeTestSource{}, testutil.NewMockCache())
	hc := controllers.NewHealthController(routeTestSource{})
	return InitRoutes(ac, hc, &testutil.MockMetrics{}, conf)
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestInitRoutes_Health(t *testing.T) {
	rr := serve(newTestRoutes(false), "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"starting"`)
}

func TestInitRoutes_SummaryBeforeFirstCycle(t *testing.T) {
	rr := serve(newTestRoutes(false), "/api/summary")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInitRoutes_MetricsOnlyWhenEnabled(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(newTestRoutes(false), "/metrics").Code)
	assert.Equal(t, http.StatusOK, serve(newTestRoutes(true), "/metrics").Code)
}

func TestInitRoutes_RecordsRequestMetrics(t *testing.T) {
	conf := &structures.Config{}
	metrics := &testutil.MockMetrics{}
	ac := controllers.NewApiController(&testutil.MockLogger{}, routeTestSource{}, testutil.NewMockCache())
	h := InitRoutes(ac, controllers.NewHealthController(routeTestSource{}), metrics, conf)

	serve(h, "/health")
	serve(h, "/unknown")

	assert.Equal(t, 1, metrics.Requests["/health"])
	assert.Equal(t, 1, metrics.Requests["other"])
}
