package recorder

import "time"

// RunRecord holds the outcome of one pipeline run.
type RunRecord struct {
	At           time.Time
	Period       string
	IntervalDays int
	Requested    int
	Fetched      int
	Skipped      string // comma-joined tickers that failed to load
	Rows         int    // joint index length of the resampled tables
	DurationMs   int64
	Error        string
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
