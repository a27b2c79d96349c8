// Package worker implements background task handlers for fetch audit archiving.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"ratesvc/internal/repository"
	"ratesvc/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewArchiveFetchHandler returns the handler for fetch archive tasks. The
// payload is a service.FetchRecord; a bad payload is dropped, a storage
// failure is retried by Asynq.
func NewArchiveFetchHandler(repo *repository.FetchLogRepository, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var rec service.FetchRecord
		if err := json.Unmarshal(t.Payload(), &rec); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}

		entry := repository.FetchLogEntry{
			Provider:   rec.Provider,
			Operation:  rec.Operation,
			Base:       rec.Base,
			RangeStart: rec.RangeStart,
			RangeEnd:   rec.RangeEnd,
			DurationMs: rec.DurationMs,
			Outcome:    rec.Outcome,
			Error:      rec.Error,
			FetchedAt:  rec.FetchedAt,
		}
		if err := repo.Insert(ctx, entry); err != nil {
			logger.Errorw("Fetch archive task failed", "provider", rec.Provider, "operation", rec.Operation, "error", err)
			return err
		}

		logger.Infow("Fetch archived", "provider", rec.Provider, "operation", rec.Operation, "base", rec.Base)
		return nil
	}
}

// AsynqArchiver enqueues fetch records onto an Asynq queue for archiving.
// It implements service.Archiver.
type AsynqArchiver struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqArchiver creates an AsynqArchiver with the given client, retry
// limit, and task timeout.
func NewAsynqArchiver(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqArchiver {
	return &AsynqArchiver{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

// ArchiveFetch enqueues one fetch record for background archiving.
func (a *AsynqArchiver) ArchiveFetch(ctx context.Context, rec service.FetchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	task := asynq.NewTask(service.TaskTypeArchiveFetch, data,
		asynq.MaxRetry(a.maxRetry),
		asynq.Timeout(a.timeout),
	)

	_, err = a.client.EnqueueContext(ctx, task)
	return err
}
