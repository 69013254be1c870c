package obsws

import (
	"strconv"
	"sync"
)

type pendingRequest struct {
	responseCh chan *Response
	errCh      chan error
}

// correlator owns the per-session id counter and the table of requests waiting for a response.
type correlator struct {
	mu      sync.Mutex
	last    uint64
	pending map[string]*pendingRequest
	err     error
}

func newCorrelator() *correlator {
	return &correlator{
		pending: make(map[string]*pendingRequest),
	}
}

// register allocates the next id and a one-shot slot for its response.
func (c *correlator) register() (string, *pendingRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return "", nil, c.err
	}

	id := c.nextIDLocked()
	pr := &pendingRequest{
		responseCh: make(chan *Response, 1),
		errCh:      make(chan error, 1),
	}
	c.pending[id] = pr

	return id, pr, nil
}

// nextIDLocked never returns 0 and skips ids that are still outstanding after a wrap.
func (c *correlator) nextIDLocked() string {
	for {
		c.last++
		if c.last == 0 {
			c.last = 1
		}

		id := strconv.FormatUint(c.last, 10)
		if _, busy := c.pending[id]; !busy {
			return id
		}
	}
}

// resolve hands the response to its caller. It reports false when nobody waits for the id.
func (c *correlator) resolve(resp *Response) bool {
	c.mu.Lock()

	pr, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}

	c.mu.Unlock()

	if ok {
		pr.responseCh <- resp
	}

	return ok
}

func (c *correlator) cancel(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// failAll wakes every waiting caller with err and rejects further registrations.
func (c *correlator) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.err = err

	for _, pr := range c.pending {
		pr.errCh <- err
	}

	c.pending = make(map[string]*pendingRequest)
}

func (c *correlator) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}
