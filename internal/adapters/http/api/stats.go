package api

import (
	"net/http"
	"time"
)

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service statistics with the API uptime.
type StatsHandler struct {
	provider StatsProvider
	since    time.Time
}

// NewStatsHandler creates a stats handler; uptime counts from now.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, since: time.Now()}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, NewKind("api.stats", ErrMethodNotAllowed))
		return
	}

	stats := h.provider.GetStats()
	out := make(map[string]interface{}, len(stats)+1)
	for k, v := range stats {
		out[k] = v
	}
	out["uptimeSeconds"] = time.Since(h.since).Seconds()
	writeJSON(w, http.StatusOK, out)
}
