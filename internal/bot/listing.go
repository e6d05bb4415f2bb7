package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/config"
	"multibot-go/internal/exchange"
	"multibot-go/internal/execution"
	"multibot-go/internal/model"
)

// minListingNotional is the smallest order the listing bot will place, in
// quote currency.
const minListingNotional = 10.0

// NewListing polls exchange info for freshly listed quote-asset pairs and
// buys a fixed fraction of available balance on each new symbol.
type NewListing struct {
	cfg    *config.Config
	client exchange.Client
	exec   execution.Executor
	cash   CashSource
	book   *Book
	log    zerolog.Logger

	quote string
	known map[string]struct{}
}

func NewNewListing(cfg *config.Config, client exchange.Client, exec execution.Executor, cash CashSource, rec Recorder, log zerolog.Logger) *NewListing {
	return &NewListing{
		cfg:    cfg,
		client: client,
		exec:   exec,
		cash:   cash,
		book:   NewBook("new_listing", rec),
		log:    log.With().Str("bot", "new_listing").Logger(),
		quote:  cfg.Trading.QuoteAsset(),
		known:  make(map[string]struct{}),
	}
}

func (n *NewListing) Name() string          { return "new_listing" }
func (n *NewListing) Stats() model.Stats    { return n.book.Stats() }
func (n *NewListing) Orders() []model.Order { return n.book.Orders() }
func (n *NewListing) Book() *Book           { return n.book }

func (n *NewListing) Run(ctx context.Context) error {
	interval := time.Duration(n.cfg.Listing.PollIntervalSec) * time.Second

	// Seed the baseline so existing symbols are not treated as listings.
	if err := n.seed(ctx); err != nil {
		n.log.Warn().Err(err).Msg("initial symbol snapshot failed")
	}
	n.log.Info().Int("known", len(n.known)).Dur("interval", interval).Msg("new listing bot started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n.scan(ctx)
		}
	}
}

func (n *NewListing) seed(ctx context.Context) error {
	symbols, err := n.client.ExchangeSymbols(ctx)
	if err != nil {
		return err
	}
	for _, sym := range symbols {
		n.known[sym] = struct{}{}
	}
	return nil
}

func (n *NewListing) scan(ctx context.Context) {
	n.monitorPositions(ctx)

	symbols, err := n.client.ExchangeSymbols(ctx)
	if err != nil {
		n.log.Warn().Err(err).Msg("exchange symbols fetch failed")
		return
	}
	if len(n.known) == 0 {
		for _, sym := range symbols {
			n.known[sym] = struct{}{}
		}
		return
	}
	for _, sym := range symbols {
		if _, seen := n.known[sym]; seen {
			continue
		}
		n.known[sym] = struct{}{}
		if !strings.HasSuffix(sym, n.quote) {
			continue
		}
		n.log.Info().Str("symbol", sym).Msg("new listing detected")
		n.enter(ctx, sym)
	}
}

func (n *NewListing) enter(ctx context.Context, symbol string) {
	spend := n.cash.AvailableCash() * n.cfg.Listing.BalanceFraction
	if spend < minListingNotional {
		n.log.Warn().Str("symbol", symbol).Float64("spend", spend).Msg("balance too small for listing entry")
		return
	}
	price, err := n.client.TickerPrice(ctx, symbol)
	if err != nil || price <= 0 {
		n.log.Warn().Err(err).Str("symbol", symbol).Msg("ticker price unavailable")
		return
	}
	filters, err := n.client.SymbolFilters(ctx, symbol)
	if err != nil {
		n.log.Warn().Err(err).Str("symbol", symbol).Msg("symbol filters unavailable")
		return
	}
	qty := exchange.QuantizeQty(spend/price, filters.StepSize)
	if qty <= 0 {
		return
	}

	order, err := n.exec.Execute(ctx, execution.Request{
		Symbol: symbol, Side: model.Buy, Type: model.Market, Qty: qty, Price: price, Bot: n.Name(),
	})
	if err != nil {
		n.log.Error().Err(err).Str("symbol", symbol).Msg("listing buy failed")
		return
	}
	fill := order.Price
	if fill <= 0 {
		fill = price
	}
	order.Reason = "New listing"
	n.book.AddOrder(order)
	n.book.OpenPosition(model.Position{
		Symbol:     symbol,
		EntryPrice: fill,
		Quantity:   order.Quantity,
		EntryTime:  time.Now().UTC(),
		TakeProfit: fill * (1 + n.cfg.Listing.ProfitTarget),
		StopLoss:   fill * (1 - n.cfg.Listing.StopLoss),
	})
	n.log.Info().Str("symbol", symbol).Float64("qty", order.Quantity).Float64("price", fill).Msg("bought new listing")
}

func (n *NewListing) monitorPositions(ctx context.Context) {
	for _, pos := range n.book.Positions() {
		price, err := n.client.TickerPrice(ctx, pos.Symbol)
		if err != nil || price <= 0 {
			continue
		}
		switch {
		case price >= pos.TakeProfit:
			n.exit(ctx, pos, price, "Take profit")
		case price <= pos.StopLoss:
			n.exit(ctx, pos, price, "Stop loss")
		}
	}
}

func (n *NewListing) exit(ctx context.Context, pos model.Position, price float64, reason string) {
	order, err := n.exec.Execute(ctx, execution.Request{
		Symbol: pos.Symbol, Side: model.Sell, Type: model.Market, Qty: pos.Quantity, Price: price, Bot: n.Name(),
	})
	if err != nil {
		n.log.Error().Err(err).Str("symbol", pos.Symbol).Msg("listing sell failed")
		return
	}
	fill := order.Price
	if fill <= 0 {
		fill = price
	}
	profit := (fill - pos.EntryPrice) * pos.Quantity
	order.Reason = reason
	order.Profit = profit
	n.book.AddOrder(order)
	n.book.ClosePosition(pos.Symbol)
	n.book.RecordTrade(profit)
	n.log.Info().Str("symbol", pos.Symbol).Float64("profit", profit).Str("reason", reason).Msg("closed listing position")
}
