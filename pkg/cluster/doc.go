// Package cluster fans relay lines out across several relay instances.
//
// A Bridge subscribes to the local broadcast channel like any client and
// forwards every locally produced line to a Transport as a small JSON
// envelope carrying the instance id. Envelopes arriving from other instances
// are published to the local channel with Remote set, which keeps them from
// being exported again; envelopes carrying the bridge's own instance id are
// skipped.
//
// RedisTransport implements Transport over Redis pub/sub using go-redis.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	bridge := cluster.NewBridge(srv, cluster.NewRedisTransport(client, "linerelay"))
//	g.Go(func() error { return bridge.Run(ctx) })
//
// Delivery across instances is best effort. Lines published while an
// instance is disconnected from Redis are lost for that instance.
package cluster
