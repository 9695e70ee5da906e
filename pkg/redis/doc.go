// Package redis provides the Redis client setup used by the durable
// delivery queue: connect with retries plus a readiness probe.
//
// # Usage
//
//	cfg := config.MustLoad[redis.Config]()
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := queue.NewRedisStorage(client)
package redis
