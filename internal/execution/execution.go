// Package execution handles order submission against the exchange or the paper account.
package execution

import (
	"context"

	"multibot-go/internal/metrics"
	"multibot-go/internal/model"
)

// Request describes a placement a bot wants executed. Price carries the
// current market price for market orders so the paper executor can fill.
type Request struct {
	Symbol string
	Side   model.Side
	Type   model.OrderType
	Qty    float64
	Price  float64
	Bot    string
}

// Executor submits order requests and returns the resulting order record.
type Executor interface {
	Execute(ctx context.Context, req Request) (model.Order, error)
}

func countOrder(req Request) {
	metrics.OrdersTotal.WithLabelValues(req.Bot, string(req.Side)).Inc()
}
