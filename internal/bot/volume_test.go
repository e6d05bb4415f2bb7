package bot

import (
	"context"
	"math"
	"testing"

	"multibot-go/internal/config"
	"multibot-go/internal/execution"
	"multibot-go/internal/model"
	"multibot-go/internal/paper"
	"multibot-go/internal/util"
)

func volumeFixture(t *testing.T) (*HighVolume, *paper.Account, *testClient) {
	t.Helper()
	cfg := &config.Config{
		Trading: config.Trading{
			Symbol:       "BTCUSDT",
			StopLoss:     0.02,
			ProfitTarget: 0.01,
		},
		Volume: config.Volume{
			SpikeThreshold:  3,
			ScoreThreshold:  80,
			ScanIntervalSec: 300,
			BalanceFraction: 0.03,
			TopN:            5,
		},
	}
	client := newTestClient()
	account := paper.NewAccount(10000)
	exec := execution.NewPaper(account)
	bot := NewHighVolume(cfg, client, exec, account, nil, util.NewLogger("error"))
	return bot, account, client
}

func constKlines(n int, close, volume float64) []model.Kline {
	out := make([]model.Kline, n)
	for i := range out {
		out[i] = model.Kline{Close: close, Volume: volume}
	}
	return out
}

func TestVolumeScore(t *testing.T) {
	cases := []struct {
		name        string
		vols        []float64
		priceChange float64
		want        float64
	}{
		{"spike with noise", []float64{100, 300}, 5, 40},
		{"steady volume", []float64{100, 100}, 0, 50},
		{"too short", []float64{100}, 10, 0},
	}
	for _, tc := range cases {
		klines := make([]model.Kline, len(tc.vols))
		for i, v := range tc.vols {
			klines[i] = model.Kline{Volume: v}
		}
		got := volumeScore(klines, tc.priceChange)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: score = %f, want %f", tc.name, got, tc.want)
		}
	}
}

func TestConfirmMomentum(t *testing.T) {
	klines := constKlines(confirmPeriod, 100, 100)
	klines[len(klines)-1].Volume = 400

	if !confirmMomentum(klines, 103, 3) {
		t.Fatal("expected confirmation with price and volume above SMAs")
	}
	if confirmMomentum(klines, 101, 3) {
		t.Fatal("price within 2% of SMA should not confirm")
	}
	if confirmMomentum(constKlines(confirmPeriod, 100, 100), 103, 3) {
		t.Fatal("flat volume should not confirm")
	}
	if confirmMomentum(klines[:confirmPeriod-1], 103, 3) {
		t.Fatal("short history should not confirm")
	}
}

func TestVolumeScanEntersAndExits(t *testing.T) {
	bot, _, client := volumeFixture(t)
	ctx := context.Background()

	klines := constKlines(24, 100, 100)
	klines[len(klines)-1].Volume = 400
	client.klines["ABCUSDT"] = klines
	client.tickers = []model.Ticker24h{
		{Symbol: "ABCUSDT", LastPrice: 103, Volume: 100000, PriceChangePercent: 30},
		{Symbol: "THINUSDT", LastPrice: 1, Volume: 100, PriceChangePercent: 90},
		{Symbol: "ABCBTC", LastPrice: 103, Volume: 100000, PriceChangePercent: 30},
	}

	bot.scan(ctx)

	pos, ok := bot.book.Position("ABCUSDT")
	if !ok {
		t.Fatal("expected position on ABCUSDT")
	}
	if _, ok := bot.book.Position("THINUSDT"); ok {
		t.Fatal("thin market should be filtered out")
	}
	if _, ok := bot.book.Position("ABCBTC"); ok {
		t.Fatal("non quote-asset pair should be filtered out")
	}
	// Wider target than the scalper: double the configured profit target.
	if want := pos.EntryPrice * 1.02; math.Abs(pos.TakeProfit-want) > 1e-9 {
		t.Fatalf("take profit = %f, want %f", pos.TakeProfit, want)
	}

	// Rescan while holding must not add to the position.
	bot.scan(ctx)
	if len(bot.Orders()) != 1 {
		t.Fatalf("orders = %d, want 1", len(bot.Orders()))
	}

	client.setPrice("ABCUSDT", pos.TakeProfit+1)
	client.tickers = nil
	bot.scan(ctx)

	if _, ok := bot.book.Position("ABCUSDT"); ok {
		t.Fatal("position should be closed at take profit")
	}
	stats := bot.Stats()
	if stats.TotalTrades != 1 || stats.TotalProfit <= 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
