package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"onlinesync/internal/models"
	"onlinesync/internal/providers"
)

// SummarySource exposes the most recent cycle summary.
type SummarySource interface {
	Last() (models.Summary, bool)
}

type ApiController struct {
	logger providers.Logger
	source SummarySource
	cache  providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, source SummarySource, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger: logger,
		source: source,
		cache:  cache,
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Cannot encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := ac.cache.Set(cacheKey, gson); err != nil {
		ac.logger.Warnf(providers.TypeApp, "Response not cached: %s", err)
	}
	writeJSON(w, http.StatusOK, gson)
}

// GetSummary returns the report of the last finished cycle. Reports are
// immutable once written, so they are cached by cycle id.
func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	summary, ok := ac.source.Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, []byte(`{"error":"no cycle finished yet"}`))
		return
	}
	ac.serveFromCacheOrCompute(w, "summary:"+summary.CycleID, func() (any, error) {
		return summary.Report(), nil
	})
}
