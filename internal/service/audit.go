package service

import (
	"context"
	"time"
)

// TaskTypeArchiveFetch is the Asynq task type for fetch audit archiving.
const TaskTypeArchiveFetch = "fetch:archive"

// FetchRecord describes one upstream fetch outcome for the audit log.
type FetchRecord struct {
	Provider   string    `json:"provider"`
	Operation  string    `json:"operation"`
	Base       string    `json:"base"`
	RangeStart string    `json:"range_start,omitempty"`
	RangeEnd   string    `json:"range_end,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Archiver enqueues fetch records for asynchronous archival. Enqueue
// failures are logged and swallowed; archiving never affects rate operations.
type Archiver interface {
	ArchiveFetch(ctx context.Context, rec FetchRecord) error
}

func (s *RateService) recordFetch(ctx context.Context, operation, base, rangeStart, rangeEnd string, started time.Time, fetchErr error) {
	outcome := "success"
	errMsg := ""
	if fetchErr != nil {
		outcome = "failure"
		errMsg = fetchErr.Error()
	}

	if s.metrics != nil {
		s.metrics.UpstreamFetchesTotal.WithLabelValues(s.providerName, outcome).Inc()
	}

	if s.archiver == nil {
		return
	}
	rec := FetchRecord{
		Provider:   s.providerName,
		Operation:  operation,
		Base:       base,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		DurationMs: time.Since(started).Milliseconds(),
		Outcome:    outcome,
		Error:      errMsg,
		FetchedAt:  started.UTC(),
	}
	if err := s.archiver.ArchiveFetch(ctx, rec); err != nil {
		s.log.Warnw("Failed to enqueue fetch record", "provider", s.providerName, "operation", operation, "error", err)
	}
}
