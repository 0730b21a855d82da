package broadcast

import "sync"

// DefaultCapacity is the ring size used when no explicit capacity is configured.
const DefaultCapacity = 1024

// Channel is a bounded multi-producer, multi-consumer broadcast queue.
// It keeps the last Capacity messages in a ring together with a monotonically
// increasing sequence counter. Producers never block: subscribers that fall
// more than Capacity messages behind lose the overwritten messages and are
// told so through a *LagError.
//
// All methods are safe for concurrent use.
type Channel[T any] struct {
	mu        sync.Mutex
	ring      []T
	head      uint64 // sequence of the oldest retained message
	tail      uint64 // sequence the next message will get
	receivers int
	closed    bool
	policy    LagPolicy
	notify    chan struct{} // closed and replaced on every publish and on close
}

// Option configures a Channel.
type Option func(*options)

type options struct {
	policy LagPolicy
}

// WithLagPolicy selects where lagging subscriptions resume. Default is ResumeLatest.
func WithLagPolicy(p LagPolicy) Option {
	return func(o *options) { o.policy = p }
}

// New creates a channel retaining up to capacity messages.
// A minimum capacity of 1 is enforced.
func New[T any](capacity int, opts ...Option) *Channel[T] {
	o := options{policy: ResumeLatest}
	for _, opt := range opts {
		opt(&o)
	}
	return &Channel[T]{
		ring:   make([]T, max(capacity, 1)),
		policy: o.policy,
		notify: make(chan struct{}),
	}
}

// Subscribe creates a subscription positioned at the current end of the
// channel: it observes every message published from now on. It never fails;
// a subscription taken after Close reports ErrClosed on its first Receive.
func (c *Channel[T]) Subscribe() *Subscription[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.receivers++
	return &Subscription[T]{ch: c, next: c.tail}
}

// Publish appends msg to the ring and wakes all waiting subscribers.
// Messages published while nobody is subscribed are not retained.
func (c *Channel[T]) Publish(msg T) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if c.receivers == 0 {
		return 0, ErrNoSubscribers
	}

	size := uint64(len(c.ring))
	c.ring[c.tail%size] = msg
	c.tail++
	if c.tail-c.head > size {
		c.head = c.tail - size
	}

	close(c.notify)
	c.notify = make(chan struct{})

	return c.receivers, nil
}

// Close marks the channel as closed. Subscribers drain what is still retained
// for them and then receive ErrClosed. It is safe to call Close multiple times.
func (c *Channel[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.notify)
	return nil
}

// Subscribers returns the number of open subscriptions.
func (c *Channel[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receivers
}

// Len returns the number of messages currently retained in the ring.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.tail - c.head)
}

// Capacity returns the ring size.
func (c *Channel[T]) Capacity() int {
	return len(c.ring)
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
