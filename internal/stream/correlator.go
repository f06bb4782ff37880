package stream

import (
	"encoding/json"
	"sync"

	"main/pkg/exception"
)

type postResult struct {
	payload json.RawMessage
	err     error
}

// Correlator pairs outbound request ids with inbound responses as one-shot
// promises. Every registered id resolves exactly once: with the matching
// response, with the caller's deadline, or with a disconnect failure.
type Correlator struct {
	mu      sync.Mutex
	pending map[uint64]chan postResult
}

// NewCorrelator creates an empty correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uint64]chan postResult)}
}

// Register reserves an id and returns its one-shot result channel.
func (c *Correlator) Register(id uint64) (<-chan postResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pending[id]; exists {
		return nil, exception.ErrDuplicateRequestID
	}

	ch := make(chan postResult, 1)
	c.pending[id] = ch
	return ch, nil
}

// Resolve completes the pending request with a matching response payload.
// Returns false when no request is waiting under the id.
func (c *Correlator) Resolve(id uint64, payload json.RawMessage) bool {
	ch := c.take(id)
	if ch == nil {
		return false
	}
	ch <- postResult{payload: payload}
	return true
}

// Fail completes the pending request with an error.
func (c *Correlator) Fail(id uint64, err error) {
	if ch := c.take(id); ch != nil {
		ch <- postResult{err: err}
	}
}

// FailAll rejects every in-flight request and clears the map. Called when
// the connection drops so callers never hang and the map stays bounded.
func (c *Correlator) FailAll(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]chan postResult)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- postResult{err: err}
	}
}

// Forget drops a pending id without resolving it. Used when the caller
// abandoned the request before the response arrived.
func (c *Correlator) Forget(id uint64) {
	_ = c.take(id)
}

// Len returns the number of in-flight requests.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Correlator) take(id uint64) chan postResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return ch
}
