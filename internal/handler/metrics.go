package handler

import (
	"fmt"
	"net/http"

	"github.com/astromusic/astromusic/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "# TYPE astromusic_chart_derivations_total counter\n")
	writeMetric(w, "astromusic_chart_derivations_total{result=%q} %d\n", metrics.ResultSuccess, snap.DerivationsSuccess)
	writeMetric(w, "astromusic_chart_derivations_total{result=%q} %d\n", metrics.ResultFallback, snap.DerivationsFallback)
	writeMetric(w, "astromusic_chart_derivations_total{result=%q} %d\n", metrics.ResultFailed, snap.DerivationsFailed)

	writeMetric(w, "astromusic_ephemeris_duration_seconds_count %d\n", snap.EphemerisDurationCount)
	writeMetric(w, "astromusic_ephemeris_duration_seconds_sum %.6f\n", float64(snap.EphemerisDurationTotalNs)/1e9)

	writeMetric(w, "astromusic_chart_cache_hits_total %d\n", snap.ChartCacheHits)
	writeMetric(w, "astromusic_chart_cache_misses_total %d\n", snap.ChartCacheMisses)
	writeMetric(w, "astromusic_charts_upserted_total %d\n", snap.ChartsUpserted)
	writeMetric(w, "astromusic_charts_deleted_total %d\n", snap.ChartsDeleted)

	writeMetric(w, "astromusic_accounts_created_total %d\n", snap.AccountsCreated)
	writeMetric(w, "astromusic_accounts_deleted_total %d\n", snap.AccountsDeleted)
	writeMetric(w, "astromusic_login_failures_total %d\n", snap.LoginFailures)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
