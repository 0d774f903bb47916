package eventmock

import (
	"context"
	"sync"

	"p2p-lending-engine/internal/domain/event"
)

var _ event.Publisher = (*Recorder)(nil)

// Recorder keeps every published event in memory. Err, when set, is returned
// from Publish and nothing is recorded.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, events ...event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, events...)
	return nil
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

// Named returns the recorded events called name, in publish order.
func (r *Recorder) Named(name event.Name) []event.Event {
	var out []event.Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
