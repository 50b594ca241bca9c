package events

import (
	"context"
	"sync"
)

// Recorded is one captured Publish call.
type Recorded struct {
	Topic   string
	Key     string
	Payload any
}

// Recorder keeps published events in memory. Handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
	Err    error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Topics returns the topics published so far, in order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}

// Events returns a copy of everything published.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}
