package stream

import (
	"sync"

	"github.com/yanun0323/logs"

	"main/internal/exchange"
)

// Handler receives the payload of one stream frame. Handlers run on the
// dispatcher goroutine, synchronously and in arrival order.
type Handler func(data []byte)

type muxEntry struct {
	sub      exchange.Subscription
	refs     int
	handlers []muxHandler
}

type muxHandler struct {
	token uint64
	fn    Handler
}

// Mux deduplicates logical subscriptions over the single connection.
// Exactly one wire subscription exists per canonical key no matter how many
// consumers attach; an explicit per-key refcount decides when the upstream
// subscribe and unsubscribe are issued.
type Mux struct {
	subscribe   func(exchange.Subscription) error
	unsubscribe func(exchange.Subscription) error

	mu        sync.Mutex
	entries   map[string]*muxEntry
	nextToken uint64
}

// NewMux creates a multiplexer that issues wire-level subscription changes
// through the given callbacks.
func NewMux(subscribe, unsubscribe func(exchange.Subscription) error) *Mux {
	return &Mux{
		subscribe:   subscribe,
		unsubscribe: unsubscribe,
		entries:     make(map[string]*muxEntry),
	}
}

// Subscribe attaches a handler under the descriptor's canonical key. The
// first consumer of a key issues one upstream subscription; later consumers
// only bump the refcount. The returned teardown detaches the handler and,
// at refcount zero, unsubscribes upstream and removes the entry.
func (m *Mux) Subscribe(sub exchange.Subscription, handler Handler) (teardown func(), err error) {
	key := sub.Key()

	m.mu.Lock()
	entry, exists := m.entries[key]
	if !exists {
		entry = &muxEntry{sub: sub}
		m.entries[key] = entry
	}
	m.nextToken++
	token := m.nextToken
	entry.handlers = append(entry.handlers, muxHandler{token: token, fn: handler})
	entry.refs++
	m.mu.Unlock()

	if !exists {
		// The wire subscribe happens outside the lock; a teardown racing in
		// here re-checks the refcount before removing the entry.
		if err := m.subscribe(sub); err != nil {
			m.detach(key, token)
			return nil, err
		}
	}

	return func() { m.detach(key, token) }, nil
}

// Dispatch fans one stream frame out to every handler whose descriptor
// matches the frame's channel and coin. Keyed feeds match on both; global
// feeds match on channel alone.
func (m *Mux) Dispatch(channel string, data []byte) {
	coin := exchange.StreamCoin(data)

	m.mu.Lock()
	var fns []Handler
	for _, entry := range m.entries {
		if entry.sub.Type != channel {
			continue
		}
		if entry.sub.Coin != "" && coin != "" && entry.sub.Coin != coin {
			continue
		}
		for _, h := range entry.handlers {
			fns = append(fns, h.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(data)
	}
}

// Refs returns the refcount under a canonical key, 0 when absent.
func (m *Mux) Refs(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok {
		return entry.refs
	}
	return 0
}

// Len returns the number of distinct wire subscriptions.
func (m *Mux) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Mux) detach(key string, token uint64) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		return
	}

	for i, h := range entry.handlers {
		if h.token == token {
			entry.handlers = append(entry.handlers[:i], entry.handlers[i+1:]...)
			entry.refs--
			break
		}
	}

	last := entry.refs <= 0
	if last {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	if last {
		if err := m.unsubscribe(entry.sub); err != nil {
			logs.Warnf("unsubscribe %s, err: %+v", key, err)
		}
	}
}
