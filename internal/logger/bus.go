package logger

import "sync"

// bus fans encoded log lines out to websocket subscribers. Slow subscribers
// drop lines instead of blocking the logger.
type bus struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func newBus() *bus {
	return &bus{subs: map[chan []byte]struct{}{}}
}

func (b *bus) subscribe(buffer int) (chan []byte, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan []byte, buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() { b.unsubscribe(ch) }
}

func (b *bus) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *bus) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *bus) publish(msg []byte) {
	if len(msg) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	copied := append([]byte(nil), msg...)
	for ch := range b.subs {
		select {
		case ch <- copied:
		default:
		}
	}
}

var defaultBus = newBus()

func Subscribe() (<-chan []byte, func()) {
	return defaultBus.subscribe(256)
}
