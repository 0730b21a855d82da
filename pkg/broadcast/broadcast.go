package broadcast

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Publisher sends messages to every live subscription of a channel.
// Implementations must never block the caller.
type Publisher[T any] interface {
	// Publish makes msg visible to all current subscriptions and returns how
	// many there were. It returns ErrNoSubscribers when nobody is listening
	// and ErrClosed once the channel has been closed.
	Publish(msg T) (int, error)
}

// Receiver is the read side of a single subscription.
type Receiver[T any] interface {
	// Receive blocks until the next message is available. Besides ctx errors
	// it reports ErrClosed (terminal) and *LagError (non-terminal).
	Receive(ctx context.Context) (T, error)

	// Close releases the subscription. It is idempotent.
	Close() error
}

// LagPolicy decides where a subscription resumes after it fell behind.
type LagPolicy int

const (
	// ResumeLatest skips the whole backlog and continues with the newest
	// retained message.
	ResumeLatest LagPolicy = iota
	// ResumeOldest continues with the oldest message still retained in the ring.
	ResumeOldest
)

func (p LagPolicy) String() string {
	switch p {
	case ResumeLatest:
		return "latest"
	case ResumeOldest:
		return "oldest"
	default:
		return fmt.Sprintf("LagPolicy(%d)", int(p))
	}
}

// UnmarshalText accepts "latest" or "oldest".
func (p *LagPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "latest", "":
		*p = ResumeLatest
	case "oldest":
		*p = ResumeOldest
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLagPolicy, text)
	}
	return nil
}

// Subscription is a receiver bound to a sequence position of a Channel.
// A subscription is meant to be read by one goroutine at a time.
type Subscription[T any] struct {
	ch     *Channel[T]
	next   uint64
	closed bool
	once   sync.Once
}

// Receive returns the next message published after the subscription was
// created. When the subscriber's position has been overwritten by faster
// producers it returns a *LagError and moves the position forward according
// to the channel's LagPolicy; the following call continues from there.
func (s *Subscription[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	for {
		c := s.ch
		c.mu.Lock()
		if s.closed {
			c.mu.Unlock()
			return zero, ErrClosed
		}

		if s.next < c.head {
			target := c.head
			if c.policy == ResumeLatest {
				target = c.tail - 1
			}
			missed := target - s.next
			s.next = target
			c.mu.Unlock()
			return zero, &LagError{Missed: missed}
		}

		if s.next < c.tail {
			msg := c.ring[s.next%uint64(len(c.ring))]
			s.next++
			c.mu.Unlock()
			return msg, nil
		}

		if c.closed {
			c.mu.Unlock()
			return zero, ErrClosed
		}

		wait := c.notify
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-wait:
		}
	}
}

// Close detaches the subscription from its channel.
func (s *Subscription[T]) Close() error {
	s.once.Do(func() {
		c := s.ch
		c.mu.Lock()
		s.closed = true
		c.receivers--
		c.mu.Unlock()
	})
	return nil
}
