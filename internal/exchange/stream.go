package exchange

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/metrics"
	"multibot-go/internal/model"
)

const (
	// ProviderStub emits deterministic synthetic klines (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams live 1m klines from Binance public websockets.
	ProviderBinance = "binance"
)

// KlineFeed represents a pluggable candle stream implementation.
type KlineFeed struct {
	provider string
	symbols  []string
	interval string
	wsBase   string
	log      zerolog.Logger
	mu       sync.RWMutex
}

// FeedOption configures KlineFeed construction parameters.
type FeedOption func(*KlineFeed)

const defaultWSBase = "wss://stream.binance.com:9443"

// WithWSBase overrides the websocket endpoint, e.g. for the testnet stream host.
func WithWSBase(base string) FeedOption {
	return func(f *KlineFeed) {
		if base != "" {
			f.wsBase = strings.TrimSuffix(base, "/")
		}
	}
}

// WithInterval overrides the default 1m kline interval.
func WithInterval(interval string) FeedOption {
	return func(f *KlineFeed) {
		if interval != "" {
			f.interval = interval
		}
	}
}

// NewKlineFeed constructs a feed backed by the requested provider.
func NewKlineFeed(provider string, symbols []string, log zerolog.Logger, opts ...FeedOption) *KlineFeed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &KlineFeed{
		provider: strings.ToLower(provider),
		interval: "1m",
		wsBase:   defaultWSBase,
		log:      log,
	}
	f.setSymbols(symbols)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *KlineFeed) setSymbols(symbols []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.symbols = f.symbols[:0]
	for sym := range unique {
		f.symbols = append(f.symbols, sym)
	}
	sort.Strings(f.symbols)
}

func (f *KlineFeed) snapshotSymbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// Run pushes closed klines onto the provided channel until the context is canceled.
func (f *KlineFeed) Run(ctx context.Context, out chan<- model.Kline) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

// runStub walks a synthetic price upward on a fast ticker so tests never wait a full minute.
func (f *KlineFeed) runStub(ctx context.Context, out chan<- model.Kline) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var px float64 = 100.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px += 0.1
			for _, s := range f.snapshotSymbols() {
				k := model.Kline{
					Symbol:    s,
					Interval:  f.interval,
					Open:      px - 0.1,
					High:      px + 0.05,
					Low:       px - 0.15,
					Close:     px,
					Volume:    1,
					CloseTime: ts,
					Closed:    true,
				}
				select {
				case out <- k:
					metrics.KlinesTotal.WithLabelValues(s).Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
