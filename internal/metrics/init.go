package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Loads (per profile × terminal status) ---
	profiles := []string{"preview", "final"}
	loadStatuses := []string{"success", "unsupported", "transient", "corrupt", "canceled"}

	for _, p := range profiles {
		for _, s := range loadStatuses {
			LoadsTotal.WithLabelValues(p, s)
		}
		LoadDuration.WithLabelValues(p)
	}

	// --- Decode attempts (per strategy × outcome) ---
	strategies := []string{"vips", "ffmpeg", "software"}
	outcomes := []string{"success", "unsupported", "transient", "fatal"}

	for _, st := range strategies {
		for _, o := range outcomes {
			DecodeAttemptsTotal.WithLabelValues(st, o)
		}
		DecodeDuration.WithLabelValues(st)
	}

	// --- Probes ---
	for _, s := range []string{"success", "error"} {
		ProbesTotal.WithLabelValues(s)
	}

	// --- Prefetch results ---
	for _, s := range []string{"completed", "failed", "canceled"} {
		PrefetchTotal.WithLabelValues(s)
	}
}
