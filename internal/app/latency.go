package service

import (
	"fmt"
	"sync"

	tdigest "github.com/caio/go-tdigest"

	"github.com/okian/podium/internal/domain/types"
)

const digestCompression = 100

// latencyTracker estimates submission-to-application latency quantiles.
type latencyTracker struct {
	mu    sync.Mutex
	td    *tdigest.TDigest
	count int64
}

func newLatencyTracker() (*latencyTracker, error) {
	td, err := tdigest.New(tdigest.Compression(digestCompression))
	if err != nil {
		return nil, fmt.Errorf("latency digest: %w", err)
	}
	return &latencyTracker{td: td}, nil
}

// observe records one latency in milliseconds. Negative values (clock skew)
// are clamped to zero.
func (l *latencyTracker) observe(ms float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.td.Add(max(ms, 0)); err == nil {
		l.count++
	}
}

// quantiles returns p50/p90/p99, all zero before the first observation.
func (l *latencyTracker) quantiles() types.LatencyQuantiles {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return types.LatencyQuantiles{}
	}
	return types.LatencyQuantiles{
		P50: l.td.Quantile(0.50),
		P90: l.td.Quantile(0.90),
		P99: l.td.Quantile(0.99),
	}
}

// reset discards every observation.
func (l *latencyTracker) reset() {
	td, err := tdigest.New(tdigest.Compression(digestCompression))
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.td = td
	l.count = 0
}
