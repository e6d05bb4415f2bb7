package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/model"
)

func TestKlineFeedRunEmitsKlines(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := NewKlineFeed(ProviderStub, []string{"BTCUSDT"}, zerolog.Nop())
	klines := make(chan model.Kline, 1)

	go func() {
		_ = feed.Run(ctx, klines)
	}()

	select {
	case k := <-klines:
		if k.Symbol != "BTCUSDT" {
			t.Fatalf("unexpected symbol %s", k.Symbol)
		}
		if !k.Closed {
			t.Fatalf("stub feed should emit closed klines")
		}
		cancel()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for kline")
	}
}

func TestParseBinanceKline(t *testing.T) {
	raw := binanceKline{
		Symbol:    "btcusdt",
		Interval:  "1m",
		Open:      "50000.1",
		High:      "50100.5",
		Low:       "49900.0",
		Close:     "50050.2",
		Volume:    "12.5",
		CloseTime: 1700000000000,
		IsClosed:  true,
	}
	k, err := parseBinanceKline(raw)
	if err != nil {
		t.Fatalf("parseBinanceKline returned error: %v", err)
	}
	if k.Symbol != "BTCUSDT" {
		t.Fatalf("expected uppercased symbol, got %s", k.Symbol)
	}
	if k.Close != 50050.2 {
		t.Fatalf("unexpected close %.2f", k.Close)
	}
	if !k.Closed {
		t.Fatalf("expected closed kline")
	}

	raw.Close = "not-a-number"
	if _, err := parseBinanceKline(raw); err == nil {
		t.Fatalf("expected error for malformed close price")
	}
}

func TestNewKlineFeedDeduplicatesSymbols(t *testing.T) {
	feed := NewKlineFeed(ProviderStub, []string{"BTCUSDT", "btc ", "BTCUSDT", "ETHUSDT"}, zerolog.Nop())
	symbols := feed.snapshotSymbols()
	if len(symbols) != 3 {
		t.Fatalf("expected 3 symbols after dedupe, got %v", symbols)
	}
}
