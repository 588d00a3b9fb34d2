package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncChartDerivation is a no-op.
func (n *NoopRecorder) IncChartDerivation(result string) {}

// ObserveEphemerisDuration is a no-op.
func (n *NoopRecorder) ObserveEphemerisDuration(duration time.Duration) {}

// IncChartCacheHit is a no-op.
func (n *NoopRecorder) IncChartCacheHit() {}

// IncChartCacheMiss is a no-op.
func (n *NoopRecorder) IncChartCacheMiss() {}

// IncChartUpserted is a no-op.
func (n *NoopRecorder) IncChartUpserted() {}

// IncChartDeleted is a no-op.
func (n *NoopRecorder) IncChartDeleted() {}

// IncAccountCreated is a no-op.
func (n *NoopRecorder) IncAccountCreated() {}

// IncAccountDeleted is a no-op.
func (n *NoopRecorder) IncAccountDeleted() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}
