package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/exchange"
	"multibot-go/internal/model"
)

const liveAttempts = 3

// Live submits orders through the REST client with bounded retry.
type Live struct {
	client  exchange.Client
	log     zerolog.Logger
	backoff time.Duration
}

func NewLive(client exchange.Client, log zerolog.Logger) *Live {
	return &Live{client: client, log: log, backoff: time.Second}
}

func (l *Live) Execute(ctx context.Context, req Request) (model.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= liveAttempts; attempt++ {
		order, err := l.client.PlaceOrder(ctx, req.Symbol, req.Side, req.Type, req.Qty, req.Price)
		if err == nil {
			order.Bot = req.Bot
			countOrder(req)
			return order, nil
		}
		lastErr = err
		l.log.Warn().Err(err).
			Str("symbol", req.Symbol).
			Str("side", string(req.Side)).
			Int("attempt", attempt).
			Msg("order attempt failed")
		if attempt < liveAttempts {
			select {
			case <-ctx.Done():
				return model.Order{}, ctx.Err()
			case <-time.After(l.backoff * time.Duration(attempt)):
			}
		}
	}
	return model.Order{}, fmt.Errorf("place %s %s after %d attempts: %w", req.Side, req.Symbol, liveAttempts, lastErr)
}
