package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"dynqr/redirector/internal/model"
)

type DispatcherOptions struct {
	Workers      int
	QueueSize    int
	WriteTimeout time.Duration
}

// Dispatcher fans scan events out to a fixed pool of workers. Submit never
// blocks: when the buffer is full the event is dropped and logged.
type Dispatcher struct {
	sink    Sink
	logger  *zap.Logger
	opts    DispatcherOptions
	queue   chan model.ScanEvent
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewDispatcher(sink Sink, logger *zap.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = opts.Workers * 4
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	return &Dispatcher{
		sink:   sink,
		logger: logger,
		opts:   opts,
		queue:  make(chan model.ScanEvent, opts.QueueSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Submit queues ev and reports whether it was accepted.
func (d *Dispatcher) Submit(ev model.ScanEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		scansDropped.WithLabelValues(dropClosed).Inc()
		d.logger.Warn("dispatcher closed, dropping scan event", zap.String("short_id", ev.ShortID))
		return false
	}

	select {
	case d.queue <- ev:
		scansSubmitted.Inc()
		return true
	default:
		scansDropped.WithLabelValues(dropQueueFull).Inc()
		d.logger.Warn("scan queue full, dropping event",
			zap.String("short_id", ev.ShortID),
			zap.Int64("scan_count", ev.ScanCount),
		)
		return false
	}
}

// Close stops accepting events and waits until queued events are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		for ev := range d.queue {
			d.write(ev)
		}
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.write(ev)
	}
}

// write runs detached from any request context so a finished HTTP request
// does not cancel its scan write.
func (d *Dispatcher) write(ev model.ScanEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.WriteTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		sinkWriteDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			sinkWrites.WithLabelValues(resultPanic).Inc()
			d.logger.Error("scan sink panicked",
				zap.String("qr_code_id", ev.QRCodeID.String()),
				zap.String("short_id", ev.ShortID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := d.sink.Record(ctx, ev); err != nil {
		sinkWrites.WithLabelValues(resultError).Inc()
		d.logger.Error("scan write failed",
			zap.String("qr_code_id", ev.QRCodeID.String()),
			zap.String("short_id", ev.ShortID),
			zap.Int64("scan_count", ev.ScanCount),
			zap.Error(err),
		)
		return
	}
	sinkWrites.WithLabelValues(resultOK).Inc()
}
