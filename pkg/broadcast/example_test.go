package broadcast_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
)

func ExampleChannel() {
	ch := broadcast.New[string](8)
	defer ch.Close()

	sub := ch.Subscribe()
	defer sub.Close()

	_, _ = ch.Publish("hello\n")
	_, _ = ch.Publish("world\n")

	ctx := context.Background()
	for range 2 {
		msg, _ := sub.Receive(ctx)
		fmt.Print(msg)
	}
	// Output:
	// hello
	// world
}

func ExampleLagError() {
	ch := broadcast.New[string](2)
	sub := ch.Subscribe()
	defer sub.Close()

	for _, l := range []string{"one", "two", "three"} {
		_, _ = ch.Publish(l)
	}

	_, err := sub.Receive(context.Background())
	var lag *broadcast.LagError
	if errors.As(err, &lag) {
		fmt.Println("missed", lag.Missed)
	}

	msg, _ := sub.Receive(context.Background())
	fmt.Println(msg)
	// Output:
	// missed 2
	// three
}
