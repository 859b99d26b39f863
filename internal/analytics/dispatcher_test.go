package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dynqr/redirector/internal/model"
)

type fakeSink struct {
	mu     sync.Mutex
	events []model.ScanEvent
	err    error
	panics bool
}

func (s *fakeSink) Record(ctx context.Context, ev model.ScanEvent) error {
	if s.panics && ev.ScanCount == 1 {
		panic("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("record called without deadline")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeSink) recorded() []model.ScanEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ScanEvent(nil), s.events...)
}

func event(n int64) model.ScanEvent {
	return model.ScanEvent{QRCodeID: uuid.New(), ShortID: "Ab3dE5gH", ScanCount: n, ScannedAt: time.Now()}
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	sink := &fakeSink{}
	d := NewDispatcher(sink, zap.NewNop(), DispatcherOptions{Workers: 3, QueueSize: 64, WriteTimeout: time.Second})
	d.Start()

	for i := int64(1); i <= 50; i++ {
		if !d.Submit(event(i)) {
			t.Fatalf("Submit(%d) rejected", i)
		}
	}
	d.Close()

	if got := len(sink.recorded()); got != 50 {
		t.Errorf("recorded %d events, want 50", got)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &fakeSink{}
	d := NewDispatcher(sink, zap.NewNop(), DispatcherOptions{Workers: 1, QueueSize: 2})

	// not started, so nothing drains the buffer
	if !d.Submit(event(1)) || !d.Submit(event(2)) {
		t.Fatal("Submit rejected before buffer was full")
	}
	if d.Submit(event(3)) {
		t.Error("Submit accepted with full buffer")
	}

	d.Close()
	if got := len(sink.recorded()); got != 2 {
		t.Errorf("recorded %d events, want 2", got)
	}
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := NewDispatcher(&fakeSink{}, zap.NewNop(), DispatcherOptions{Workers: 1, QueueSize: 1})
	d.Start()
	d.Close()
	d.Close()

	if d.Submit(event(1)) {
		t.Error("Submit accepted after Close")
	}
}

func TestDispatcher_SinkFailuresDoNotStopWorkers(t *testing.T) {
	sink := &fakeSink{panics: true}
	d := NewDispatcher(sink, zap.NewNop(), DispatcherOptions{Workers: 1, QueueSize: 8})
	d.Start()

	d.Submit(event(1)) // panics
	d.Submit(event(2))
	d.Submit(event(3))
	d.Close()

	got := sink.recorded()
	if len(got) != 2 {
		t.Fatalf("recorded %d events, want 2", len(got))
	}

	failing := &fakeSink{err: errors.New("db down")}
	d = NewDispatcher(failing, zap.NewNop(), DispatcherOptions{Workers: 1, QueueSize: 8})
	d.Start()
	if !d.Submit(event(5)) {
		t.Fatal("Submit rejected")
	}
	d.Close()
}
