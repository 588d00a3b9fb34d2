// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Derivation results.
const (
	ResultSuccess  = "success"
	ResultFallback = "fallback"
	ResultFailed   = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Chart derivation metrics
	IncChartDerivation(result string) // result: "success", "fallback" or "failed"
	ObserveEphemerisDuration(duration time.Duration)

	// Chart record metrics
	IncChartCacheHit()
	IncChartCacheMiss()
	IncChartUpserted()
	IncChartDeleted()

	// Account metrics
	IncAccountCreated()
	IncAccountDeleted()
	IncLoginFailure()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
