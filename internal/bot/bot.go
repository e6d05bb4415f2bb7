// Package bot implements the trading bots the supervisor runs: a scalper
// driven by the kline stream, a new-listing sniper, and a volume scanner.
package bot

import (
	"context"

	"multibot-go/internal/model"
)

// Bot is the unit the manager supervises. Run blocks until the context is
// cancelled or the bot fails.
type Bot interface {
	Name() string
	Run(ctx context.Context) error
	Stats() model.Stats
	Orders() []model.Order
}

// KlineSource streams closed candles into the given channel.
type KlineSource interface {
	Run(ctx context.Context, out chan<- model.Kline) error
}

// CashSource reports quote currency available for new entries.
type CashSource interface {
	AvailableCash() float64
}
