package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/config"
	"multibot-go/internal/exchange"
	"multibot-go/internal/execution"
	"multibot-go/internal/model"
	"multibot-go/internal/risk"
	"multibot-go/internal/strategy"
)

const (
	// minConfidence gates signal-driven entries and exits; a signal must
	// exceed it to trade.
	minConfidence = 0.6
	// buySlip and sellSlip nudge limit prices toward the book so they fill.
	buySlip  = 1.001
	sellSlip = 0.999
)

// Scalping trades one symbol off the closed-kline stream using the
// indicator strategy, holding at most one position at a time.
type Scalping struct {
	cfg    *config.Config
	client exchange.Client
	exec   execution.Executor
	feed   KlineSource
	strat  *strategy.Scalping
	book   *Book
	risk   *risk.Monitor
	log    zerolog.Logger
}

func NewScalping(cfg *config.Config, client exchange.Client, exec execution.Executor, feed KlineSource, monitor *risk.Monitor, rec Recorder, log zerolog.Logger) *Scalping {
	return &Scalping{
		cfg:    cfg,
		client: client,
		exec:   exec,
		feed:   feed,
		strat:  strategy.NewScalping(cfg.Indicators),
		book:   NewBook("scalping", rec),
		risk:   monitor,
		log:    log.With().Str("bot", "scalping").Logger(),
	}
}

func (s *Scalping) Name() string          { return "scalping" }
func (s *Scalping) Orders() []model.Order { return s.book.Orders() }
func (s *Scalping) Book() *Book           { return s.book }

func (s *Scalping) Stats() model.Stats {
	stats := s.book.Stats()
	stats.Symbol = s.cfg.Trading.Symbol
	return stats
}

func (s *Scalping) Run(ctx context.Context) error {
	klines := make(chan model.Kline, 64)
	go func() {
		if err := s.feed.Run(ctx, klines); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("kline feed stopped")
		}
	}()

	s.log.Info().Str("symbol", s.cfg.Trading.Symbol).Msg("scalping bot started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case k := <-klines:
			if !k.Closed {
				continue
			}
			s.onKline(ctx, k)
		}
	}
}

func (s *Scalping) onKline(ctx context.Context, k model.Kline) {
	price := k.Close
	s.checkExit(ctx, k.Symbol, price)

	sig := s.strat.OnClose(k)
	if sig.Confidence <= minConfidence {
		return
	}
	_, holding := s.book.Position(k.Symbol)
	switch sig.Action {
	case strategy.Buy:
		if holding {
			return
		}
		s.enter(ctx, k.Symbol, price, sig.Reason)
	case strategy.Sell:
		if !holding {
			return
		}
		s.exit(ctx, k.Symbol, price, sig.Reason)
	}
}

// checkExit closes the open position when the take-profit or stop-loss
// level is crossed, regardless of what the strategy says.
func (s *Scalping) checkExit(ctx context.Context, symbol string, price float64) {
	pos, ok := s.book.Position(symbol)
	if !ok {
		return
	}
	switch {
	case price >= pos.TakeProfit:
		s.exit(ctx, symbol, price, "Take profit")
	case price <= pos.StopLoss:
		s.exit(ctx, symbol, price, "Stop loss")
	}
}

func (s *Scalping) enter(ctx context.Context, symbol string, price float64, reason string) {
	filters, err := s.client.SymbolFilters(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("symbol filters unavailable")
		return
	}
	qty := exchange.QuantizeQty(s.cfg.Trading.Quantity, filters.StepSize)
	limit := exchange.QuantizePrice(price*buySlip, filters.TickSize)
	if qty <= 0 || limit <= 0 {
		return
	}
	if !s.risk.Allow(qty * limit) {
		s.log.Warn().Float64("notional", qty*limit).Msg("entry blocked by risk limits")
		return
	}

	order, err := s.exec.Execute(ctx, execution.Request{
		Symbol: symbol, Side: model.Buy, Type: model.Limit, Qty: qty, Price: limit, Bot: s.Name(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("buy failed")
		return
	}
	fill := order.Price
	if fill <= 0 {
		fill = limit
	}
	order.Reason = reason
	s.book.AddOrder(order)
	s.book.OpenPosition(model.Position{
		Symbol:     symbol,
		EntryPrice: fill,
		Quantity:   order.Quantity,
		EntryTime:  time.Now().UTC(),
		TakeProfit: fill * (1 + s.cfg.Trading.ProfitTarget),
		StopLoss:   fill * (1 - s.cfg.Trading.StopLoss),
	})
	s.log.Info().Str("symbol", symbol).Float64("qty", order.Quantity).Float64("price", fill).Str("reason", reason).Msg("entered position")
}

// ForceTrade places an immediate market entry on the configured symbol,
// bypassing the strategy. Backs the dashboard's manual trigger.
func (s *Scalping) ForceTrade(ctx context.Context) (model.Order, error) {
	symbol := s.cfg.Trading.Symbol
	if _, holding := s.book.Position(symbol); holding {
		return model.Order{}, fmt.Errorf("position already open on %s", symbol)
	}
	price, err := s.client.TickerPrice(ctx, symbol)
	if err != nil {
		return model.Order{}, fmt.Errorf("ticker price: %w", err)
	}
	filters, err := s.client.SymbolFilters(ctx, symbol)
	if err != nil {
		return model.Order{}, fmt.Errorf("symbol filters: %w", err)
	}
	qty := exchange.QuantizeQty(s.cfg.Trading.Quantity, filters.StepSize)
	if qty <= 0 || price <= 0 {
		return model.Order{}, fmt.Errorf("cannot size order for %s", symbol)
	}
	if !s.risk.Allow(qty * price) {
		return model.Order{}, fmt.Errorf("blocked by risk limits")
	}

	order, err := s.exec.Execute(ctx, execution.Request{
		Symbol: symbol, Side: model.Buy, Type: model.Market, Qty: qty, Price: price, Bot: s.Name(),
	})
	if err != nil {
		return model.Order{}, err
	}
	fill := order.Price
	if fill <= 0 {
		fill = price
	}
	order.Reason = "Forced trade"
	s.book.AddOrder(order)
	s.book.OpenPosition(model.Position{
		Symbol:     symbol,
		EntryPrice: fill,
		Quantity:   order.Quantity,
		EntryTime:  time.Now().UTC(),
		TakeProfit: fill * (1 + s.cfg.Trading.ProfitTarget),
		StopLoss:   fill * (1 - s.cfg.Trading.StopLoss),
	})
	s.log.Info().Str("symbol", symbol).Float64("qty", order.Quantity).Msg("forced trade placed")
	return order, nil
}

func (s *Scalping) exit(ctx context.Context, symbol string, price float64, reason string) {
	pos, ok := s.book.Position(symbol)
	if !ok {
		return
	}
	filters, err := s.client.SymbolFilters(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("symbol filters unavailable")
		return
	}
	limit := exchange.QuantizePrice(price*sellSlip, filters.TickSize)

	order, err := s.exec.Execute(ctx, execution.Request{
		Symbol: symbol, Side: model.Sell, Type: model.Limit, Qty: pos.Quantity, Price: limit, Bot: s.Name(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("sell failed")
		return
	}
	fill := order.Price
	if fill <= 0 {
		fill = limit
	}
	profit := (fill - pos.EntryPrice) * pos.Quantity
	order.Reason = reason
	order.Profit = profit
	s.book.AddOrder(order)
	s.book.ClosePosition(symbol)
	s.book.RecordTrade(profit)
	s.risk.RecordPnL(profit)
	s.log.Info().Str("symbol", symbol).Float64("profit", profit).Str("reason", reason).Msg("closed position")
}
