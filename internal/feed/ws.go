package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oddskit/surebet/internal/domain"
)

// reconnectDelay spaces reconnect attempts after a dropped connection.
const reconnectDelay = 2 * time.Second

// WSSource reads raw odds batches from a WebSocket endpoint, one JSON batch
// per text frame. It reconnects on disconnect and keeps a buffered queue so
// a slow pipeline does not stall the socket reader.
type WSSource struct {
	url    string
	out    chan domain.RawBatch
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewWSSource creates a source for the given endpoint. Run must be started
// before Receive yields anything.
func NewWSSource(url string, logger *slog.Logger) *WSSource {
	return &WSSource{
		url:    url,
		out:    make(chan domain.RawBatch, 64),
		logger: logger.With(slog.String("component", "ws_feed"), slog.String("url", url)),
		done:   make(chan struct{}),
	}
}

// Run connects and reads frames until ctx is cancelled or Close is called,
// reconnecting with a fixed delay after failures.
func (s *WSSource) Run(ctx context.Context) error {
	defer close(s.out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		default:
		}

		if err := s.readConnection(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("feed disconnected, reconnecting",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *WSSource) readConnection(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-s.done:
			_ = conn.Close()
		case <-stop:
		}
	}()

	s.logger.Info("feed connected")
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var batch domain.RawBatch
		if err := json.Unmarshal(payload, &batch); err != nil {
			s.logger.Warn("dropping undecodable frame",
				slog.String("error", err.Error()),
			)
			continue
		}

		select {
		case s.out <- batch:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		}
	}
}

// Receive blocks until the next batch from the socket reader.
func (s *WSSource) Receive(ctx context.Context) (domain.RawBatch, error) {
	select {
	case <-ctx.Done():
		return domain.RawBatch{}, ctx.Err()
	case batch, ok := <-s.out:
		if !ok {
			return domain.RawBatch{}, domain.ErrFeedClosed
		}
		return batch, nil
	}
}

// Close stops the reader and any pending Receive.
func (s *WSSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

var _ domain.FeedSource = (*WSSource)(nil)
