package bot

import (
	"context"
	"sync"
	"time"

	"multibot-go/internal/model"
)

// testClient is an in-memory exchange the bot tests drive directly.
type testClient struct {
	mu       sync.Mutex
	prices   map[string]float64
	filters  model.SymbolFilters
	symbols  []string
	tickers  []model.Ticker24h
	klines   map[string][]model.Kline
	balances map[string]model.AssetBalance
}

func newTestClient() *testClient {
	return &testClient{
		prices:  make(map[string]float64),
		filters: model.SymbolFilters{StepSize: 0.001, TickSize: 0.01, MinNotional: 10},
		klines:  make(map[string][]model.Kline),
	}
}

func (c *testClient) setPrice(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[symbol] = price
}

func (c *testClient) ServerTime(ctx context.Context) (time.Time, error) { return time.Now(), nil }

func (c *testClient) AccountBalances(ctx context.Context) (map[string]model.AssetBalance, error) {
	return c.balances, nil
}

func (c *testClient) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prices[symbol], nil
}

func (c *testClient) Ticker24h(ctx context.Context) ([]model.Ticker24h, error) {
	return c.tickers, nil
}

func (c *testClient) ExchangeSymbols(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out, nil
}

func (c *testClient) SymbolFilters(ctx context.Context, symbol string) (model.SymbolFilters, error) {
	return c.filters, nil
}

func (c *testClient) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Kline, error) {
	return c.klines[symbol], nil
}

func (c *testClient) Depth(ctx context.Context, symbol string) (int, int, error) { return 0, 0, nil }

func (c *testClient) PlaceOrder(ctx context.Context, symbol string, side model.Side, typ model.OrderType, qty, price float64) (model.Order, error) {
	return model.Order{Symbol: symbol, Side: side, Type: typ, Quantity: qty, Price: price, Status: "FILLED"}, nil
}

func (c *testClient) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	return nil
}
