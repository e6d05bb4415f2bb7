package bot

import (
	"context"
	"testing"
	"time"

	"multibot-go/internal/config"
	"multibot-go/internal/execution"
	"multibot-go/internal/model"
	"multibot-go/internal/paper"
	"multibot-go/internal/risk"
	"multibot-go/internal/util"
)

type scriptedFeed struct {
	klines []model.Kline
}

func (f *scriptedFeed) Run(ctx context.Context, out chan<- model.Kline) error {
	for _, k := range f.klines {
		select {
		case <-ctx.Done():
			return nil
		case out <- k:
		}
	}
	<-ctx.Done()
	return nil
}

// Drives the full path: stream, exit check, executor, paper account.
func TestScalpingRunClosesPositionFromStream(t *testing.T) {
	cfg := &config.Config{
		Trading: config.Trading{
			Symbol:       "BTCUSDT",
			Quantity:     0.01,
			StopLoss:     0.02,
			ProfitTarget: 0.01,
		},
		Indicators: config.Indicators{
			EMAShort: 9, EMALong: 21, RSIPeriod: 14,
			MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		},
	}
	client := newTestClient()
	account := paper.NewAccount(10000)
	exec := execution.NewPaper(account)
	monitor := risk.NewMonitor(risk.Limits{}, account.StartingCash())

	bot := NewScalping(cfg, client, exec, nil, monitor, nil, util.NewLogger("error"))
	ctx := context.Background()
	bot.enter(ctx, "BTCUSDT", 50000, "Range buy")
	pos, ok := bot.book.Position("BTCUSDT")
	if !ok {
		t.Fatal("expected open position")
	}

	bot.feed = &scriptedFeed{klines: []model.Kline{
		{Symbol: "BTCUSDT", Close: pos.TakeProfit + 100, Closed: true},
	}}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bot.Run(runCtx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, holding := bot.book.Position("BTCUSDT"); !holding {
			break
		}
		select {
		case <-deadline:
			t.Fatal("position never closed from streamed kline")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	stats := bot.Stats()
	if stats.TotalTrades != 1 || stats.TotalProfit <= 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if account.RealizedPnL() <= 0 {
		t.Fatalf("realized pnl = %f, want positive", account.RealizedPnL())
	}
	if account.Position("BTCUSDT") != 0 {
		t.Fatalf("paper position = %f, want 0", account.Position("BTCUSDT"))
	}
}
