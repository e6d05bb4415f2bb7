package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"multibot-go/internal/metrics"
	"multibot-go/internal/model"
)

type binanceEnvelope struct {
	Stream string           `json:"stream"`
	Data   binanceKlineData `json:"data"`
}

type binanceKlineData struct {
	EventTime int64        `json:"E"`
	Kline     binanceKline `json:"k"`
}

type binanceKline struct {
	Symbol    string `json:"s"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	CloseTime int64  `json:"T"`
	IsClosed  bool   `json:"x"`
}

func (f *KlineFeed) runBinance(ctx context.Context, out chan<- model.Kline) error {
	symbols := f.snapshotSymbols()
	if len(symbols) == 0 {
		return fmt.Errorf("binance kline feed requires at least one symbol")
	}

	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(sym) + "@kline_" + f.interval
	}

	url := fmt.Sprintf("%s/stream?streams=%s", f.wsBase, strings.Join(streams, "/"))
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		started := time.Now()
		if err := f.consumeBinanceStream(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A session that held for a while earns a fresh backoff.
			if time.Since(started) > time.Minute {
				backoff = time.Second
			}
			f.log.Warn().Err(err).Msg("binance kline feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *KlineFeed) consumeBinanceStream(ctx context.Context, url string, out chan<- model.Kline) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderBinance).Strs("symbols", f.snapshotSymbols()).Msg("connected kline feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env binanceEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode binance message")
			continue
		}

		k, err := parseBinanceKline(env.Data.Kline)
		if err != nil {
			f.log.Warn().Err(err).Msg("invalid kline from binance")
			continue
		}
		// only closed candles drive the strategy
		if !k.Closed {
			continue
		}

		select {
		case out <- k:
			metrics.KlinesTotal.WithLabelValues(k.Symbol).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseBinanceKline(raw binanceKline) (model.Kline, error) {
	open, err := strconv.ParseFloat(raw.Open, 64)
	if err != nil {
		return model.Kline{}, fmt.Errorf("parse open: %w", err)
	}
	high, err := strconv.ParseFloat(raw.High, 64)
	if err != nil {
		return model.Kline{}, fmt.Errorf("parse high: %w", err)
	}
	low, err := strconv.ParseFloat(raw.Low, 64)
	if err != nil {
		return model.Kline{}, fmt.Errorf("parse low: %w", err)
	}
	closePx, err := strconv.ParseFloat(raw.Close, 64)
	if err != nil {
		return model.Kline{}, fmt.Errorf("parse close: %w", err)
	}
	volume, err := strconv.ParseFloat(raw.Volume, 64)
	if err != nil {
		return model.Kline{}, fmt.Errorf("parse volume: %w", err)
	}
	return model.Kline{
		Symbol:    strings.ToUpper(raw.Symbol),
		Interval:  raw.Interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
		CloseTime: time.UnixMilli(raw.CloseTime),
		Closed:    raw.IsClosed,
	}, nil
}
