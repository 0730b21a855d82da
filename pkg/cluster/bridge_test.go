package cluster_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
	"github.com/dmitrymomot/linerelay/pkg/cluster"
	"github.com/dmitrymomot/linerelay/pkg/relay"
)

const waitFor = 2 * time.Second

// bus is an in-memory Transport shared by several bridges.
type bus struct {
	mu   sync.Mutex
	subs []chan []byte
}

func (b *bus) Publish(_ context.Context, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		ch <- payload
	}
	return nil
}

func (b *bus) Subscribe(context.Context) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan []byte, 64)
	b.subs = append(b.subs, ch)
	return ch, nil
}

func (b *bus) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func runBridge(t *testing.T, ctx context.Context, b *cluster.Bridge) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	return done
}

func receive(t *testing.T, sub *broadcast.Subscription[relay.Line]) relay.Line {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	line, err := sub.Receive(ctx)
	require.NoError(t, err)
	return line
}

func TestBridge_FansOutBetweenInstances(t *testing.T) {
	t.Parallel()

	transport := &bus{}
	srvA := relay.NewServer(relay.Config{MaxInFlightMsgs: 16})
	srvB := relay.NewServer(relay.Config{MaxInFlightMsgs: 16})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	doneA := runBridge(t, ctx, cluster.NewBridge(srvA, transport))
	doneB := runBridge(t, ctx, cluster.NewBridge(srvB, transport))

	require.Eventually(t, func() bool {
		return transport.subscribers() == 2 &&
			srvA.Channel().Subscribers() == 1 &&
			srvB.Channel().Subscribers() == 1
	}, waitFor, 5*time.Millisecond)

	subA := srvA.Channel().Subscribe()
	defer subA.Close()
	subB := srvB.Channel().Subscribe()
	defer subB.Close()

	sender := uuid.New()
	_, err := srvA.Publish(relay.Line{Text: "hello\n", Sender: sender})
	require.NoError(t, err)

	local := receive(t, subA)
	assert.Equal(t, relay.Line{Text: "hello\n", Sender: sender}, local)

	remote := receive(t, subB)
	assert.Equal(t, relay.Line{Text: "hello\n", Sender: sender, Remote: true}, remote)

	// A's bridge skips its own envelope and B's bridge never re-exports, so
	// the next line on A is the next local one.
	_, err = srvA.Publish(relay.Line{Text: "second\n", Sender: sender})
	require.NoError(t, err)
	assert.Equal(t, "second\n", receive(t, subA).Text)

	cancel()
	assert.NoError(t, <-doneA)
	assert.NoError(t, <-doneB)
}

func TestBridge_DropsMalformedAndOwnMessages(t *testing.T) {
	t.Parallel()

	transport := &bus{}
	srv := relay.NewServer(relay.Config{MaxInFlightMsgs: 16})
	self := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bridge := cluster.NewBridge(srv, transport, cluster.WithInstanceID(self))
	assert.Equal(t, self, bridge.InstanceID())
	done := runBridge(t, ctx, bridge)

	require.Eventually(t, func() bool { return transport.subscribers() == 1 }, waitFor, 5*time.Millisecond)
	sub := srv.Channel().Subscribe()
	defer sub.Close()

	own, err := json.Marshal(map[string]any{"origin": self, "sender": uuid.New(), "text": "mine\n"})
	require.NoError(t, err)
	other, err := json.Marshal(map[string]any{"origin": uuid.New(), "sender": uuid.New(), "text": "theirs\n"})
	require.NoError(t, err)

	require.NoError(t, transport.Publish(ctx, []byte("not json")))
	require.NoError(t, transport.Publish(ctx, own))
	require.NoError(t, transport.Publish(ctx, other))

	line := receive(t, sub)
	assert.Equal(t, "theirs\n", line.Text)
	assert.True(t, line.Remote)

	cancel()
	assert.NoError(t, <-done)
}

func TestBridge_StopsWhenChannelCloses(t *testing.T) {
	t.Parallel()

	srv := relay.NewServer(relay.Config{MaxInFlightMsgs: 16})
	done := runBridge(t, context.Background(), cluster.NewBridge(srv, &bus{}))

	require.Eventually(t, func() bool { return srv.Channel().Subscribers() == 1 }, waitFor, 5*time.Millisecond)
	require.NoError(t, srv.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		require.FailNow(t, "bridge did not stop")
	}
}
