// Package feed delivers raw odds batches from the external scraper
// transport into the pipeline. Two sources exist: a Redis Pub/Sub channel
// and a direct WebSocket endpoint for deployments without Redis. Both hand
// the pipeline domain.RawBatch values and never validate batch contents;
// that is the normalizer's job.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oddskit/surebet/internal/cache/redis"
	"github.com/oddskit/surebet/internal/domain"
)

// BusSource reads raw odds batches from a Redis Pub/Sub channel.
type BusSource struct {
	ch     <-chan []byte
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewBusSource subscribes to channel on the given bus. The subscription
// lives until Close (or the passed context) ends it.
func NewBusSource(ctx context.Context, bus *redis.OddsBus, channel string, logger *slog.Logger) (*BusSource, error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch, err := bus.Subscribe(subCtx, channel)
	if err != nil {
		cancel()
		return nil, err
	}
	return &BusSource{
		ch:     ch,
		cancel: cancel,
		logger: logger.With(slog.String("component", "bus_feed"), slog.String("channel", channel)),
	}, nil
}

// Receive blocks until the next batch arrives. Payloads that do not decode
// as a batch are dropped with a warning; the transport is not trusted to be
// clean.
func (s *BusSource) Receive(ctx context.Context) (domain.RawBatch, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.RawBatch{}, ctx.Err()
		case payload, ok := <-s.ch:
			if !ok {
				return domain.RawBatch{}, domain.ErrFeedClosed
			}
			var batch domain.RawBatch
			if err := json.Unmarshal(payload, &batch); err != nil {
				s.logger.Warn("dropping undecodable batch payload",
					slog.String("error", err.Error()),
				)
				continue
			}
			return batch, nil
		}
	}
}

// Close ends the subscription.
func (s *BusSource) Close() error {
	s.cancel()
	return nil
}

var _ domain.FeedSource = (*BusSource)(nil)
