// Package broadcast provides a bounded, in-memory publish/subscribe channel
// with explicit lag reporting.
//
// A Channel keeps a fixed-capacity ring of recent messages and a sequence
// counter. Each Subscription remembers the sequence of the next message it
// wants; publishing never blocks and never waits for slow readers.
//
// # Usage
//
//	ch := broadcast.New[string](1024)
//	defer ch.Close()
//
//	sub := ch.Subscribe()
//	defer sub.Close()
//
//	go func() {
//		for {
//			msg, err := sub.Receive(ctx)
//			switch {
//			case err == nil:
//				fmt.Print(msg)
//			case errors.Is(err, broadcast.ErrLagged):
//				// some messages were overwritten, keep going
//			default:
//				return // broadcast.ErrClosed or ctx error
//			}
//		}
//	}()
//
//	if _, err := ch.Publish("hello\n"); errors.Is(err, broadcast.ErrNoSubscribers) {
//		// nobody listening, nothing stored
//	}
//
// # Slow Consumers
//
// Memory is bounded by the capacity. A subscriber that falls more than
// Capacity messages behind gets a *LagError carrying the number of missed
// messages, after which it resumes at the position chosen by the channel's
// LagPolicy (newest message by default, or the oldest retained one with
// ResumeOldest). It never receives a message twice and never out of order.
//
// # Closing
//
// Close wakes every waiting subscriber. Messages already retained are still
// delivered, after that Receive returns ErrClosed.
//
// # Thread Safety
//
// Channel is safe for concurrent use. A single Subscription should be read by
// one goroutine at a time.
package broadcast
