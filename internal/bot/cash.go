package bot

import (
	"context"
	"time"

	"multibot-go/internal/exchange"
)

// ExchangeCash reports free quote balance straight from the exchange
// account, for live runs where no simulated account exists.
type ExchangeCash struct {
	Client exchange.Client
	Asset  string
}

func (e ExchangeCash) AvailableCash() float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	balances, err := e.Client.AccountBalances(ctx)
	if err != nil {
		return 0
	}
	return balances[e.Asset].Free
}
