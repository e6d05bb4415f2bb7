package bot

import (
	"context"
	"testing"

	"multibot-go/internal/config"
	"multibot-go/internal/execution"
	"multibot-go/internal/paper"
	"multibot-go/internal/util"
)

func listingFixture(t *testing.T) (*NewListing, *paper.Account, *testClient) {
	t.Helper()
	cfg := &config.Config{
		Trading: config.Trading{Symbol: "BTCUSDT"},
		Listing: config.Listing{
			ProfitTarget:    0.05,
			StopLoss:        0.03,
			PollIntervalSec: 60,
			BalanceFraction: 0.02,
		},
	}
	client := newTestClient()
	account := paper.NewAccount(10000)
	exec := execution.NewPaper(account)
	bot := NewNewListing(cfg, client, exec, account, nil, util.NewLogger("error"))
	return bot, account, client
}

func TestListingDetectsNewSymbol(t *testing.T) {
	bot, _, client := listingFixture(t)
	ctx := context.Background()

	client.symbols = []string{"BTCUSDT", "ETHUSDT"}
	if err := bot.seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	bot.scan(ctx)
	if len(bot.Orders()) != 0 {
		t.Fatal("no orders expected without new listings")
	}

	client.symbols = []string{"BTCUSDT", "ETHUSDT", "NEWUSDT", "NEWBTC"}
	client.setPrice("NEWUSDT", 2)
	bot.scan(ctx)

	pos, ok := bot.book.Position("NEWUSDT")
	if !ok {
		t.Fatal("expected position on NEWUSDT")
	}
	if _, ok := bot.book.Position("NEWBTC"); ok {
		t.Fatal("non quote-asset pair should be ignored")
	}
	// 2% of 10000 at price 2.
	if pos.Quantity != 100 {
		t.Fatalf("qty = %f, want 100", pos.Quantity)
	}
	orders := bot.Orders()
	if len(orders) != 1 || orders[0].Reason != "New listing" {
		t.Fatalf("orders = %+v", orders)
	}

	// A repeat scan must not buy the same listing twice.
	bot.scan(ctx)
	if len(bot.Orders()) != 1 {
		t.Fatal("listing bought twice")
	}
}

func TestListingTakeProfit(t *testing.T) {
	bot, account, client := listingFixture(t)
	ctx := context.Background()

	client.symbols = []string{"BTCUSDT"}
	if err := bot.seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	client.symbols = []string{"BTCUSDT", "NEWUSDT"}
	client.setPrice("NEWUSDT", 2)
	bot.scan(ctx)

	pos, ok := bot.book.Position("NEWUSDT")
	if !ok {
		t.Fatal("expected position")
	}
	client.setPrice("NEWUSDT", pos.TakeProfit+0.01)
	bot.scan(ctx)

	if _, ok := bot.book.Position("NEWUSDT"); ok {
		t.Fatal("position should be closed")
	}
	stats := bot.Stats()
	if stats.TotalTrades != 1 || stats.TotalProfit <= 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if account.RealizedPnL() <= 0 {
		t.Fatalf("realized pnl = %f, want positive", account.RealizedPnL())
	}
}

func TestListingSkipsTinyBalance(t *testing.T) {
	bot, _, client := listingFixture(t)
	ctx := context.Background()

	// 2% of 100 is below the minimum notional.
	small := paper.NewAccount(100)
	bot.cash = small
	bot.exec = execution.NewPaper(small)

	client.symbols = []string{"BTCUSDT"}
	if err := bot.seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	client.symbols = []string{"BTCUSDT", "NEWUSDT"}
	client.setPrice("NEWUSDT", 2)
	bot.scan(ctx)

	if len(bot.Orders()) != 0 {
		t.Fatal("entry should be skipped below minimum notional")
	}
}
