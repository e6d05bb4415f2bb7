package execution

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"multibot-go/internal/model"
	"multibot-go/internal/paper"
)

// Paper fills orders instantly against the simulated account. Limit orders
// fill at the limit price, market orders at the request's current price.
type Paper struct {
	account *paper.Account
	nextID  atomic.Int64
}

func NewPaper(account *paper.Account) *Paper {
	return &Paper{account: account}
}

func (p *Paper) Execute(ctx context.Context, req Request) (model.Order, error) {
	if err := ctx.Err(); err != nil {
		return model.Order{}, err
	}
	price := req.Price
	if price <= 0 {
		return model.Order{}, fmt.Errorf("paper fill %s: no price", req.Symbol)
	}
	if _, err := p.account.Fill(req.Symbol, req.Side, req.Qty, price); err != nil {
		return model.Order{}, err
	}
	countOrder(req)
	return model.Order{
		OrderID:   p.nextID.Add(1),
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Quantity:  req.Qty,
		Price:     price,
		Status:    "FILLED",
		Timestamp: time.Now().UTC(),
		Bot:       req.Bot,
	}, nil
}
