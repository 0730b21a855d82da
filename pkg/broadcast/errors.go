package broadcast

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSubscribers is returned by Publish when there is nobody to deliver to.
	// It is expected whenever a single client is connected.
	ErrNoSubscribers = errors.New("broadcast: no subscribers")

	// ErrClosed is returned once the channel has been closed and everything
	// retained for the subscriber has been consumed.
	ErrClosed = errors.New("broadcast: channel closed")

	// ErrInvalidLagPolicy is returned when parsing an unknown lag policy name.
	ErrInvalidLagPolicy = errors.New("broadcast: invalid lag policy")

	// ErrLagged matches any *LagError via errors.Is.
	ErrLagged = errors.New("broadcast: subscriber lagged")
)

// LagError reports how many messages a subscriber missed because its
// position was overwritten before it could read them.
type LagError struct {
	Missed uint64
}

func (e *LagError) Error() string {
	return fmt.Sprintf("broadcast: subscriber lagged by %d messages", e.Missed)
}

func (e *LagError) Is(target error) bool {
	return target == ErrLagged
}
