package logger

import "sync"

type Event struct {
	Time  string         `json:"time"`
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type ring struct {
	mu     sync.Mutex
	max    int
	events []Event
}

func newRing(max int) *ring {
	if max < 1 {
		max = 1
	}
	return &ring{max: max}
}

func (r *ring) add(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) < r.max {
		r.events = append(r.events, evt)
		return
	}
	copy(r.events, r.events[1:])
	r.events[len(r.events)-1] = evt
}

func (r *ring) recent(limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}
	return append([]Event(nil), r.events[len(r.events)-limit:]...)
}

var defaultRing = newRing(2000)

// Recent returns up to limit of the newest log events, oldest first.
func Recent(limit int) []Event {
	return defaultRing.recent(limit)
}
