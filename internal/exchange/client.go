// Package exchange hosts the Binance spot REST client and kline stream sources.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"

	"multibot-go/internal/model"
)

// Client is the exchange surface the bots depend on.
type Client interface {
	ServerTime(ctx context.Context) (time.Time, error)
	AccountBalances(ctx context.Context) (map[string]model.AssetBalance, error)
	TickerPrice(ctx context.Context, symbol string) (float64, error)
	Ticker24h(ctx context.Context) ([]model.Ticker24h, error)
	ExchangeSymbols(ctx context.Context) ([]string, error)
	SymbolFilters(ctx context.Context, symbol string) (model.SymbolFilters, error)
	Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Kline, error)
	Depth(ctx context.Context, symbol string) (bids, asks int, err error)
	PlaceOrder(ctx context.Context, symbol string, side model.Side, typ model.OrderType, qty, price float64) (model.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
}

const filtersTTL = 5 * time.Minute

// BinanceClient talks to the Binance spot REST API (testnet by default).
type BinanceClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	log       zerolog.Logger
	filters   *ristretto.Cache
}

// NewBinanceClient wires a REST client against the given base URL.
func NewBinanceClient(baseURL, apiKey, apiSecret string, log zerolog.Logger) (*BinanceClient, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("filters cache: %w", err)
	}
	return &BinanceClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 15 * time.Second},
		log:       log,
		filters:   cache,
	}, nil
}

type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

// ServerTime reports the exchange clock, used by the probe to verify connectivity.
func (c *BinanceClient) ServerTime(ctx context.Context) (time.Time, error) {
	var resp serverTimeResponse
	if err := c.get(ctx, "/api/v3/time", nil, false, &resp); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(resp.ServerTime), nil
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// AccountBalances returns free/locked amounts per asset from the signed account endpoint.
func (c *BinanceClient) AccountBalances(ctx context.Context) (map[string]model.AssetBalance, error) {
	var resp accountResponse
	if err := c.get(ctx, "/api/v3/account", nil, true, &resp); err != nil {
		return nil, err
	}
	balances := make(map[string]model.AssetBalance, len(resp.Balances))
	for _, b := range resp.Balances {
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			continue
		}
		locked, err := strconv.ParseFloat(b.Locked, 64)
		if err != nil {
			continue
		}
		balances[b.Asset] = model.AssetBalance{Free: free, Locked: locked}
	}
	return balances, nil
}

type tickerPriceResponse struct {
	Price string `json:"price"`
}

// TickerPrice returns the latest trade price for a symbol.
func (c *BinanceClient) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	var resp tickerPriceResponse
	if err := c.get(ctx, "/api/v3/ticker/price", url.Values{"symbol": {symbol}}, false, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Price, 64)
}

type ticker24hEntry struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	Volume             string `json:"volume"`
	PriceChangePercent string `json:"priceChangePercent"`
}

// Ticker24h returns 24h rolling statistics for every symbol.
func (c *BinanceClient) Ticker24h(ctx context.Context) ([]model.Ticker24h, error) {
	var entries []ticker24hEntry
	if err := c.get(ctx, "/api/v3/ticker/24hr", nil, false, &entries); err != nil {
		return nil, err
	}
	out := make([]model.Ticker24h, 0, len(entries))
	for _, e := range entries {
		last, _ := strconv.ParseFloat(e.LastPrice, 64)
		vol, _ := strconv.ParseFloat(e.Volume, 64)
		change, _ := strconv.ParseFloat(e.PriceChangePercent, 64)
		out = append(out, model.Ticker24h{
			Symbol:             e.Symbol,
			LastPrice:          last,
			Volume:             vol,
			PriceChangePercent: change,
		})
	}
	return out, nil
}

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol  string `json:"symbol"`
		Status  string `json:"status"`
		Filters []struct {
			FilterType  string `json:"filterType"`
			StepSize    string `json:"stepSize"`
			TickSize    string `json:"tickSize"`
			MinNotional string `json:"minNotional"`
		} `json:"filters"`
	} `json:"symbols"`
}

// ExchangeSymbols lists every tradeable symbol, used by the listing bot to spot new pairs.
func (c *BinanceClient) ExchangeSymbols(ctx context.Context) ([]string, error) {
	var resp exchangeInfoResponse
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, false, &resp); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status == "TRADING" {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols, nil
}

// SymbolFilters fetches lot-step, tick-size, and min-notional rules for a symbol.
// Results are cached for five minutes; order sizing hits this on every trade.
func (c *BinanceClient) SymbolFilters(ctx context.Context, symbol string) (model.SymbolFilters, error) {
	if cached, ok := c.filters.Get(symbol); ok {
		if f, ok := cached.(model.SymbolFilters); ok {
			return f, nil
		}
	}

	var resp exchangeInfoResponse
	if err := c.get(ctx, "/api/v3/exchangeInfo", url.Values{"symbol": {symbol}}, false, &resp); err != nil {
		return model.SymbolFilters{}, err
	}
	if len(resp.Symbols) == 0 {
		return model.SymbolFilters{}, fmt.Errorf("no exchange info for symbol %s", symbol)
	}

	var f model.SymbolFilters
	for _, raw := range resp.Symbols[0].Filters {
		switch raw.FilterType {
		case "LOT_SIZE":
			f.StepSize, _ = strconv.ParseFloat(raw.StepSize, 64)
		case "PRICE_FILTER":
			f.TickSize, _ = strconv.ParseFloat(raw.TickSize, 64)
		case "MIN_NOTIONAL", "NOTIONAL":
			f.MinNotional, _ = strconv.ParseFloat(raw.MinNotional, 64)
		}
	}
	c.filters.SetWithTTL(symbol, f, 1, filtersTTL)
	return f, nil
}

// Klines fetches historical candles, newest last.
func (c *BinanceClient) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Kline, error) {
	params := url.Values{"symbol": {symbol}, "interval": {interval}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var rows [][]any
	if err := c.get(ctx, "/api/v3/klines", params, false, &rows); err != nil {
		return nil, err
	}

	klines := make([]model.Kline, 0, len(rows))
	for _, row := range rows {
		// open time, open, high, low, close, volume, close time, ...
		if len(row) < 7 {
			continue
		}
		k := model.Kline{Symbol: symbol, Interval: interval, Closed: true}
		k.Open = parseFloatField(row[1])
		k.High = parseFloatField(row[2])
		k.Low = parseFloatField(row[3])
		k.Close = parseFloatField(row[4])
		k.Volume = parseFloatField(row[5])
		if ms, ok := row[6].(float64); ok {
			k.CloseTime = time.UnixMilli(int64(ms))
		}
		klines = append(klines, k)
	}
	return klines, nil
}

type depthResponse struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

// Depth reports order book side counts, enough for the connectivity probe.
func (c *BinanceClient) Depth(ctx context.Context, symbol string) (int, int, error) {
	var resp depthResponse
	if err := c.get(ctx, "/api/v3/depth", url.Values{"symbol": {symbol}}, false, &resp); err != nil {
		return 0, 0, err
	}
	return len(resp.Bids), len(resp.Asks), nil
}

type orderResponse struct {
	OrderID int64  `json:"orderId"`
	Symbol  string `json:"symbol"`
	Status  string `json:"status"`
	Price   string `json:"price"`
	OrigQty string `json:"origQty"`
	Fills   []struct {
		Price string `json:"price"`
	} `json:"fills"`
}

// PlaceOrder submits a signed market or limit order and normalizes the response.
func (c *BinanceClient) PlaceOrder(ctx context.Context, symbol string, side model.Side, typ model.OrderType, qty, price float64) (model.Order, error) {
	params := url.Values{
		"symbol":   {symbol},
		"side":     {string(side)},
		"type":     {string(typ)},
		"quantity": {strconv.FormatFloat(qty, 'f', -1, 64)},
	}
	if typ == model.Limit {
		params.Set("timeInForce", "GTC")
		params.Set("price", strconv.FormatFloat(price, 'f', -1, 64))
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/api/v3/order", params, &resp); err != nil {
		return model.Order{}, err
	}

	fillPrice := price
	if len(resp.Fills) > 0 {
		if p, err := strconv.ParseFloat(resp.Fills[0].Price, 64); err == nil {
			fillPrice = p
		}
	} else if p, err := strconv.ParseFloat(resp.Price, 64); err == nil && p > 0 {
		fillPrice = p
	}

	return model.Order{
		OrderID:   resp.OrderID,
		Symbol:    resp.Symbol,
		Side:      side,
		Type:      typ,
		Quantity:  qty,
		Price:     fillPrice,
		Status:    resp.Status,
		Timestamp: time.Now(),
	}, nil
}

// CancelOrder removes a resting order.
func (c *BinanceClient) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := url.Values{
		"symbol":  {symbol},
		"orderId": {strconv.FormatInt(orderID, 10)},
	}
	return c.do(ctx, http.MethodDelete, "/api/v3/order", params, &struct{}{})
}

func (c *BinanceClient) get(ctx context.Context, path string, params url.Values, signed bool, out any) error {
	if signed {
		return c.do(ctx, http.MethodGet, path, params, out)
	}
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// do issues a signed request: timestamp appended, query HMAC-signed, API key header set.
func (c *BinanceClient) do(ctx context.Context, method, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	query += "&signature=" + hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	return c.send(req, out)
}

func (c *BinanceClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseFloatField(v any) float64 {
	switch t := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case float64:
		return t
	default:
		return 0
	}
}
