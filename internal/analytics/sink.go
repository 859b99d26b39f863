// Package analytics records scan events off the redirect path.
//
// The resolver hands events to a Dispatcher, which never blocks the caller.
// Dispatcher workers pass events to a Sink: StoreSink writes the scan count
// straight to the repository, QueueSink enqueues an asynq task that the
// worker command later applies through a StoreSink.
package analytics

import (
	"context"
	"errors"

	"dynqr/redirector/internal/model"
	"dynqr/redirector/internal/repository"
)

// Sink persists a single scan event.
type Sink interface {
	Record(ctx context.Context, ev model.ScanEvent) error
}

type StoreSink struct {
	repo repository.QRCodeRepository
}

func NewStoreSink(repo repository.QRCodeRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

// Record writes the event's scan count and timestamp. A record deleted after
// it was resolved is not an error.
func (s *StoreSink) Record(ctx context.Context, ev model.ScanEvent) error {
	err := s.repo.UpdateScanStats(ctx, ev.QRCodeID, ev.ScanCount, ev.ScannedAt)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
