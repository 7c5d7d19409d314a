package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	source    SummarySource
	startTime time.Time
}

type healthResponse struct {
	Status        string     `json:"status"`
	Uptime        string     `json:"uptime"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	LastCycleID   string     `json:"last_cycle_id,omitempty"`
	LastCycleAt   *time.Time `json:"last_cycle_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// Health reports "starting" until the first cycle ends, then "ok" or
// "degraded" depending on whether that cycle failed.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "starting",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
	}
	if last, ok := hc.source.Last(); ok {
		resp.Status = "ok"
		resp.LastCycleID = last.CycleID
		at := last.StartedAt
		resp.LastCycleAt = &at
		if last.Err != nil {
			resp.Status = "degraded"
			resp.LastError = last.Err.Error()
		}
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(source SummarySource) *HealthController {
	return &HealthController{
		source:    source,
		startTime: time.Now(),
	}
}
