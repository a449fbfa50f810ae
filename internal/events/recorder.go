package events

import (
	"context"
	"sync"

	"zkdex-backend/internal/models"
	"zkdex-backend/internal/services"
)

// RecordedEvent is one event held by a Recorder.
type RecordedEvent struct {
	Kind    models.EventKind
	Payload []byte
}

// Recorder keeps published events in memory, standing in for the broker
// in tests.
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish appends the event.
func (r *Recorder) Publish(ctx context.Context, kind models.EventKind, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	r.events = append(r.events, RecordedEvent{Kind: kind, Payload: buf})
}

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the published event kinds in order.
func (r *Recorder) Kinds() []models.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]models.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// MultiSink forwards each publish to every attached sink in order.
type MultiSink struct {
	sinks []services.EventSink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...services.EventSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Publish forwards the event to every sink.
func (m *MultiSink) Publish(ctx context.Context, kind models.EventKind, payload []byte) {
	for _, sink := range m.sinks {
		sink.Publish(ctx, kind, payload)
	}
}
