package monitop

import (
	"time"
)

const (
	// UPDATE_INTERVAL is the time between poll ticks in seconds
	UPDATE_INTERVAL = 3

	// SAMPLES_LIMIT is the number of samples requested for the counts chart
	SAMPLES_LIMIT = 500

	// POINTS_LIMIT is the number of throughput points requested per target
	POINTS_LIMIT = 1000

	// PROBE_TIMEOUT_SECONDS bounds each backend probe request
	PROBE_TIMEOUT_SECONDS = 3
)

// Targets are the pipeline stages the backend tracks throughput for
var Targets = []string{"files", "chunks", "candidates", "clones"}

// UpdateDuration returns the update interval as a time.Duration
func UpdateDuration() time.Duration {
	return time.Duration(UPDATE_INTERVAL) * time.Second
}

// ProbeTimeout returns the per-request probe timeout as a time.Duration
func ProbeTimeout() time.Duration {
	return time.Duration(PROBE_TIMEOUT_SECONDS) * time.Second
}
