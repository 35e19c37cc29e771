// Package metrics provides the Prometheus metrics for quorum.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on concrete Prometheus types.
type Recorder interface {
	// RecordOperation records an operation outcome, e.g. ("ballot_submit", "accepted").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type, e.g. ("ballot_submit", "storage").
	RecordError(operation, errorType string)
}

// NoopRecorder discards everything. It is the default when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string) {}
func (NoopRecorder) RecordDuration(string, float64) {}
func (NoopRecorder) RecordError(string, string)     {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
