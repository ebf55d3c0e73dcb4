package metrics

import "github.com/DevMiloo/PhotoSift/internal/decode"

// decodeObserver implements decode.Observer using the Prometheus
// metrics declared in this package.
type decodeObserver struct{}

// NewDecodeObserver creates an observer that records decode chain metrics
// into the Prometheus counters and histograms declared in metrics.go.
func NewDecodeObserver() decode.Observer {
	return &decodeObserver{}
}

func (o *decodeObserver) ObserveAttempt(strategy, outcome string, durationSeconds float64) {
	DecodeAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
	DecodeDuration.WithLabelValues(strategy).Observe(durationSeconds)
}
