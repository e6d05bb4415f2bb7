package bot

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/config"
	"multibot-go/internal/exchange"
	"multibot-go/internal/execution"
	"multibot-go/internal/model"
)

const (
	// scanCandidates caps how many top-volume tickers get kline analysis per scan.
	scanCandidates = 20
	// minQuoteVolume filters out thin markets before scoring.
	minQuoteVolume = 1_000_000.0
	// confirmPeriod is the SMA window used to confirm momentum.
	confirmPeriod = 20
)

// HighVolume scans 24h tickers for unusual volume, scores candidates, and
// enters short-term momentum positions on the strongest confirmations.
type HighVolume struct {
	cfg    *config.Config
	client exchange.Client
	exec   execution.Executor
	cash   CashSource
	book   *Book
	log    zerolog.Logger

	quote string
}

type volumeCandidate struct {
	symbol string
	price  float64
	score  float64
	klines []model.Kline
}

func NewHighVolume(cfg *config.Config, client exchange.Client, exec execution.Executor, cash CashSource, rec Recorder, log zerolog.Logger) *HighVolume {
	return &HighVolume{
		cfg:    cfg,
		client: client,
		exec:   exec,
		cash:   cash,
		book:   NewBook("high_volume", rec),
		log:    log.With().Str("bot", "high_volume").Logger(),
		quote:  cfg.Trading.QuoteAsset(),
	}
}

func (h *HighVolume) Name() string          { return "high_volume" }
func (h *HighVolume) Stats() model.Stats    { return h.book.Stats() }
func (h *HighVolume) Orders() []model.Order { return h.book.Orders() }
func (h *HighVolume) Book() *Book           { return h.book }

func (h *HighVolume) Run(ctx context.Context) error {
	interval := time.Duration(h.cfg.Volume.ScanIntervalSec) * time.Second
	h.log.Info().Dur("interval", interval).Msg("high volume bot started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.scan(ctx)
		}
	}
}

func (h *HighVolume) scan(ctx context.Context) {
	h.monitorPositions(ctx)

	tickers, err := h.client.Ticker24h(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("24h tickers fetch failed")
		return
	}
	candidates := h.rank(ctx, tickers)
	for _, c := range candidates {
		if _, holding := h.book.Position(c.symbol); holding {
			continue
		}
		if !confirmMomentum(c.klines, c.price, h.cfg.Volume.SpikeThreshold) {
			continue
		}
		h.enter(ctx, c.symbol, c.price, c.score)
	}
}

// rank filters to liquid quote-asset pairs, scores the busiest ones on
// hourly klines, and returns the top performers above the threshold.
func (h *HighVolume) rank(ctx context.Context, tickers []model.Ticker24h) []volumeCandidate {
	liquid := tickers[:0:0]
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, h.quote) {
			continue
		}
		if t.LastPrice*t.Volume < minQuoteVolume {
			continue
		}
		liquid = append(liquid, t)
	}
	sort.Slice(liquid, func(i, j int) bool {
		return liquid[i].LastPrice*liquid[i].Volume > liquid[j].LastPrice*liquid[j].Volume
	})
	if len(liquid) > scanCandidates {
		liquid = liquid[:scanCandidates]
	}

	var candidates []volumeCandidate
	for _, t := range liquid {
		klines, err := h.client.Klines(ctx, t.Symbol, "1h", 24)
		if err != nil {
			h.log.Warn().Err(err).Str("symbol", t.Symbol).Msg("klines fetch failed")
			continue
		}
		score := volumeScore(klines, t.PriceChangePercent)
		if score <= h.cfg.Volume.ScoreThreshold {
			continue
		}
		candidates = append(candidates, volumeCandidate{
			symbol: t.Symbol,
			price:  t.LastPrice,
			score:  score,
			klines: klines,
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > h.cfg.Volume.TopN {
		candidates = candidates[:h.cfg.Volume.TopN]
	}
	return candidates
}

// volumeScore blends volume spike, price movement, and steadiness into a
// single 0-130 ranking. Higher means a stronger, cleaner surge.
func volumeScore(klines []model.Kline, priceChangePercent float64) float64 {
	if len(klines) < 2 {
		return 0
	}
	vols := make([]float64, len(klines))
	for i, k := range klines {
		vols[i] = k.Volume
	}
	avg := mean(vols)
	if avg <= 0 {
		return 0
	}
	ratio := vols[len(vols)-1] / avg
	spread := stddev(vols) / avg * 100

	score := math.Min(ratio*20, 50)
	score += math.Abs(priceChangePercent) * 2
	score += 30 - math.Min(spread, 30)
	return score
}

// confirmMomentum requires price above its hourly SMA and the latest volume
// above the volume SMA by the spike threshold.
func confirmMomentum(klines []model.Kline, price, spike float64) bool {
	if len(klines) < confirmPeriod {
		return false
	}
	recent := klines[len(klines)-confirmPeriod:]
	closes := make([]float64, len(recent))
	vols := make([]float64, len(recent))
	for i, k := range recent {
		closes[i] = k.Close
		vols[i] = k.Volume
	}
	priceSMA := mean(closes)
	volSMA := mean(vols)
	if priceSMA <= 0 || volSMA <= 0 {
		return false
	}
	return price > priceSMA*1.02 && vols[len(vols)-1] > volSMA*spike
}

func (h *HighVolume) enter(ctx context.Context, symbol string, price, score float64) {
	spend := h.cash.AvailableCash() * h.cfg.Volume.BalanceFraction
	if spend < minListingNotional {
		h.log.Warn().Str("symbol", symbol).Float64("spend", spend).Msg("balance too small for volume entry")
		return
	}
	filters, err := h.client.SymbolFilters(ctx, symbol)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("symbol filters unavailable")
		return
	}
	qty := exchange.QuantizeQty(spend/price, filters.StepSize)
	if qty <= 0 {
		return
	}

	order, err := h.exec.Execute(ctx, execution.Request{
		Symbol: symbol, Side: model.Buy, Type: model.Market, Qty: qty, Price: price, Bot: h.Name(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("volume buy failed")
		return
	}
	fill := order.Price
	if fill <= 0 {
		fill = price
	}
	order.Reason = "Volume surge"
	h.book.AddOrder(order)
	h.book.OpenPosition(model.Position{
		Symbol:     symbol,
		EntryPrice: fill,
		Quantity:   order.Quantity,
		EntryTime:  time.Now().UTC(),
		TakeProfit: fill * (1 + 2*h.cfg.Trading.ProfitTarget),
		StopLoss:   fill * (1 - h.cfg.Trading.StopLoss),
	})
	h.log.Info().Str("symbol", symbol).Float64("score", score).Float64("qty", order.Quantity).Float64("price", fill).Msg("entered volume position")
}

func (h *HighVolume) monitorPositions(ctx context.Context) {
	for _, pos := range h.book.Positions() {
		price, err := h.client.TickerPrice(ctx, pos.Symbol)
		if err != nil || price <= 0 {
			continue
		}
		switch {
		case price >= pos.TakeProfit:
			h.exit(ctx, pos, price, "Take profit")
		case price <= pos.StopLoss:
			h.exit(ctx, pos, price, "Stop loss")
		}
	}
}

func (h *HighVolume) exit(ctx context.Context, pos model.Position, price float64, reason string) {
	order, err := h.exec.Execute(ctx, execution.Request{
		Symbol: pos.Symbol, Side: model.Sell, Type: model.Market, Qty: pos.Quantity, Price: price, Bot: h.Name(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("symbol", pos.Symbol).Msg("volume sell failed")
		return
	}
	fill := order.Price
	if fill <= 0 {
		fill = price
	}
	profit := (fill - pos.EntryPrice) * pos.Quantity
	order.Reason = reason
	order.Profit = profit
	h.book.AddOrder(order)
	h.book.ClosePosition(pos.Symbol)
	h.book.RecordTrade(profit)
	h.log.Info().Str("symbol", pos.Symbol).Float64("profit", profit).Str("reason", reason).Msg("closed volume position")
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
