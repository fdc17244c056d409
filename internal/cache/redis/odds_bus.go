package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OddsBus is the Pub/Sub channel raw odds batches travel on from the
// external scraper transport into the pipeline.
type OddsBus struct {
	rdb *redis.Client
}

// NewOddsBus creates an OddsBus backed by the given Client.
func NewOddsBus(c *Client) *OddsBus {
	return &OddsBus{rdb: c.Underlying()}
}

// Publish sends one raw batch payload to the channel. Used by ingestion
// shims and tests; the production publisher is the external scraper.
func (b *OddsBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription and returns a channel of raw payloads. The
// subscription closes, and the returned channel with it, when ctx is done.
func (b *OddsBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := b.rdb.Subscribe(ctx, channel)

	// Receive the confirmation so a broken connection fails here, not on
	// the first read.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
