package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	DerivationsSuccess       uint64
	DerivationsFallback      uint64
	DerivationsFailed        uint64
	EphemerisDurationCount   uint64
	EphemerisDurationTotalNs int64
	ChartCacheHits           uint64
	ChartCacheMisses         uint64
	ChartsUpserted           uint64
	ChartsDeleted            uint64
	AccountsCreated          uint64
	AccountsDeleted          uint64
	LoginFailures            uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics endpoint.
type InMemoryRecorder struct {
	derivationsSuccess       uint64
	derivationsFallback      uint64
	derivationsFailed        uint64
	ephemerisDurationCount   uint64
	ephemerisDurationTotalNs int64
	chartCacheHits           uint64
	chartCacheMisses         uint64
	chartsUpserted           uint64
	chartsDeleted            uint64
	accountsCreated          uint64
	accountsDeleted          uint64
	loginFailures            uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		DerivationsSuccess:       atomic.LoadUint64(&m.derivationsSuccess),
		DerivationsFallback:      atomic.LoadUint64(&m.derivationsFallback),
		DerivationsFailed:        atomic.LoadUint64(&m.derivationsFailed),
		EphemerisDurationCount:   atomic.LoadUint64(&m.ephemerisDurationCount),
		EphemerisDurationTotalNs: atomic.LoadInt64(&m.ephemerisDurationTotalNs),
		ChartCacheHits:           atomic.LoadUint64(&m.chartCacheHits),
		ChartCacheMisses:         atomic.LoadUint64(&m.chartCacheMisses),
		ChartsUpserted:           atomic.LoadUint64(&m.chartsUpserted),
		ChartsDeleted:            atomic.LoadUint64(&m.chartsDeleted),
		AccountsCreated:          atomic.LoadUint64(&m.accountsCreated),
		AccountsDeleted:          atomic.LoadUint64(&m.accountsDeleted),
		LoginFailures:            atomic.LoadUint64(&m.loginFailures),
	}
}

// IncChartDerivation increments the derivation counter for result.
// Unknown results are counted as failures.
func (m *InMemoryRecorder) IncChartDerivation(result string) {
	switch result {
	case ResultSuccess:
		atomic.AddUint64(&m.derivationsSuccess, 1)
	case ResultFallback:
		atomic.AddUint64(&m.derivationsFallback, 1)
	default:
		atomic.AddUint64(&m.derivationsFailed, 1)
	}
}

// ObserveEphemerisDuration records the latency of one ephemeris call.
func (m *InMemoryRecorder) ObserveEphemerisDuration(duration time.Duration) {
	atomic.AddUint64(&m.ephemerisDurationCount, 1)
	atomic.AddInt64(&m.ephemerisDurationTotalNs, duration.Nanoseconds())
}

// IncChartCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncChartCacheHit() {
	atomic.AddUint64(&m.chartCacheHits, 1)
}

// IncChartCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncChartCacheMiss() {
	atomic.AddUint64(&m.chartCacheMisses, 1)
}

// IncChartUpserted increments chart upsert counter.
func (m *InMemoryRecorder) IncChartUpserted() {
	atomic.AddUint64(&m.chartsUpserted, 1)
}

// IncChartDeleted increments chart deleted counter.
func (m *InMemoryRecorder) IncChartDeleted() {
	atomic.AddUint64(&m.chartsDeleted, 1)
}

// IncAccountCreated increments account created counter.
func (m *InMemoryRecorder) IncAccountCreated() {
	atomic.AddUint64(&m.accountsCreated, 1)
}

// IncAccountDeleted increments account deleted counter.
func (m *InMemoryRecorder) IncAccountDeleted() {
	atomic.AddUint64(&m.accountsDeleted, 1)
}

// IncLoginFailure increments failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}
