// Command probe exercises exchange connectivity end to end: clock, account,
// market data, and optionally a far-off limit order that is cancelled right
// away. Run it against the testnet before trusting a new credential set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"multibot-go/internal/config"
	"multibot-go/internal/exchange"
	"multibot-go/internal/model"
	"multibot-go/internal/util"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "symbol to probe")
	placeOrder := flag.Bool("order", false, "place and cancel a far-off limit order")
	flag.Parse()

	log := util.NewLogger("info")
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("load environment")
	}
	client, err := exchange.NewBinanceClient(env.BaseURL(), env.APIKey, env.APISecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("exchange client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverTime, err := client.ServerTime(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("server time")
	}
	skew := time.Since(serverTime)
	fmt.Printf("server time %s (skew %s)\n", serverTime.Format(time.RFC3339), skew.Round(time.Millisecond))

	price, err := client.TickerPrice(ctx, *symbol)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", *symbol).Msg("ticker price")
	}
	fmt.Printf("%s price %.8f\n", *symbol, price)

	bids, asks, err := client.Depth(ctx, *symbol)
	if err != nil {
		log.Fatal().Err(err).Msg("depth")
	}
	fmt.Printf("order book: %d bids, %d asks\n", bids, asks)

	klines, err := client.Klines(ctx, *symbol, "1m", 5)
	if err != nil {
		log.Fatal().Err(err).Msg("klines")
	}
	fmt.Printf("last %d 1m closes:", len(klines))
	for _, k := range klines {
		fmt.Printf(" %.2f", k.Close)
	}
	fmt.Println()

	if env.APIKey == "" {
		fmt.Println("no credentials set, skipping account checks")
		return
	}

	balances, err := client.AccountBalances(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("account balances")
	}
	fmt.Println("non-zero balances:")
	for asset, bal := range balances {
		if bal.Free > 0 || bal.Locked > 0 {
			fmt.Printf("  %-6s free=%.8f locked=%.8f\n", asset, bal.Free, bal.Locked)
		}
	}

	if !*placeOrder {
		return
	}

	filters, err := client.SymbolFilters(ctx, *symbol)
	if err != nil {
		log.Fatal().Err(err).Msg("symbol filters")
	}
	// Bid 50% below market so the order rests and never fills.
	limit := exchange.QuantizePrice(price*0.5, filters.TickSize)
	qty := exchange.QuantizeQty(filters.MinNotional/limit*1.1, filters.StepSize)

	order, err := client.PlaceOrder(ctx, *symbol, model.Buy, model.Limit, qty, limit)
	if err != nil {
		log.Fatal().Err(err).Msg("place test order")
	}
	fmt.Printf("placed test order %d: %s %.6f @ %.6f (%s)\n", order.OrderID, order.Side, order.Quantity, order.Price, order.Status)

	if err := client.CancelOrder(ctx, *symbol, order.OrderID); err != nil {
		fmt.Fprintf(os.Stderr, "cancel failed, remove order %d manually: %v\n", order.OrderID, err)
		os.Exit(1)
	}
	fmt.Println("test order cancelled, connectivity verified")
}
