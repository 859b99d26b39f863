package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"dynqr/redirector/internal/model"
)

const (
	// ScanTask is enqueued once per successful redirect when analytics runs in queue mode.
	ScanTask = "qr:scan"
)

// NewScanTask serializes ev into an asynq task.
func NewScanTask(ev model.ScanEvent) (*asynq.Task, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal scan event: %w", err)
	}
	return asynq.NewTask(ScanTask, data), nil
}

// QueueSink hands events to Redis so a separate worker process applies them.
type QueueSink struct {
	client   *asynq.Client
	maxRetry int
}

func NewQueueSink(client *asynq.Client, maxRetry int) *QueueSink {
	return &QueueSink{client: client, maxRetry: maxRetry}
}

func (s *QueueSink) Record(ctx context.Context, ev model.ScanEvent) error {
	task, err := NewScanTask(ev)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(s.maxRetry)); err != nil {
		return fmt.Errorf("enqueue scan task: %w", err)
	}
	return nil
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	sink   Sink
	logger *zap.Logger
}

func NewProcessor(sink Sink, logger *zap.Logger) *Processor {
	return &Processor{sink: sink, logger: logger}
}

// Handler registers the scan task handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(ScanTask, p.handleScan)
	return mux
}

func (p *Processor) handleScan(ctx context.Context, task *asynq.Task) error {
	var ev model.ScanEvent
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		// a malformed payload will never decode, retrying is pointless
		return fmt.Errorf("decode scan payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := p.sink.Record(ctx, ev); err != nil {
		p.logger.Error("scan write failed",
			zap.String("qr_code_id", ev.QRCodeID.String()),
			zap.String("short_id", ev.ShortID),
			zap.Int64("scan_count", ev.ScanCount),
			zap.Error(err),
		)
		return err
	}
	return nil
}
