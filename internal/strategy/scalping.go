// Package strategy contains the signal generation logic the scalping bot wires into klines.
package strategy

import (
	"sync"

	talib "github.com/markcheno/go-talib"

	"multibot-go/internal/config"
	"multibot-go/internal/model"
)

// Action enumerates decisions a strategy can emit.
type Action string

const (
	Hold Action = "HOLD"
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Trend labels the prevailing market direction.
type Trend string

const (
	Uptrend   Trend = "UPTREND"
	Downtrend Trend = "DOWNTREND"
	Neutral   Trend = "NEUTRAL"
)

// Signal expresses a trading decision with its confidence and rationale.
type Signal struct {
	Action     Action
	Confidence float64
	Reason     string
	Price      float64
}

// Indicators carries the latest computed values the decision rules read.
type Indicators struct {
	EMAShort   float64
	EMALong    float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	BBUpper    float64
	BBMiddle   float64
	BBLower    float64
}

const (
	maxCloses  = 100
	trimCloses = 50
	bbPeriod   = 20
)

// Scalping combines EMA crossover, RSI, MACD, and Bollinger bands into
// dip-buy / rally-sell signals conditioned on the prevailing trend.
type Scalping struct {
	cfg        config.Indicators
	minHistory int

	mu     sync.Mutex
	closes []float64
	trend  Trend
}

// NewScalping builds the strategy from indicator periods.
func NewScalping(cfg config.Indicators) *Scalping {
	min := cfg.EMALong
	if warm := cfg.MACDSlow + cfg.MACDSignal; warm > min {
		min = warm
	}
	if bbPeriod > min {
		min = bbPeriod
	}
	return &Scalping{
		cfg:        cfg,
		minHistory: min,
		closes:     make([]float64, 0, maxCloses),
		trend:      Neutral,
	}
}

// Trend reports the direction determined on the last evaluation.
func (s *Scalping) Trend() Trend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trend
}

// OnClose ingests a closed kline and returns a signal, Hold with zero
// confidence until enough history has accumulated.
func (s *Scalping) OnClose(k model.Kline) Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes = append(s.closes, k.Close)
	if len(s.closes) > maxCloses {
		s.closes = s.closes[len(s.closes)-trimCloses:]
	}

	ind, ok := s.indicators()
	if !ok {
		return Signal{Action: Hold, Price: k.Close}
	}

	s.trend = determineTrend(ind)
	return decide(k.Close, s.trend, ind)
}

func (s *Scalping) indicators() (Indicators, bool) {
	if len(s.closes) < s.minHistory {
		return Indicators{}, false
	}

	closes := s.closes
	emaShort := talib.Ema(closes, s.cfg.EMAShort)
	emaLong := talib.Ema(closes, s.cfg.EMALong)
	rsi := talib.Rsi(closes, s.cfg.RSIPeriod)
	macd, macdSignal, macdHist := talib.Macd(closes, s.cfg.MACDFast, s.cfg.MACDSlow, s.cfg.MACDSignal)
	bbUpper, bbMiddle, bbLower := talib.BBands(closes, bbPeriod, 2, 2, talib.SMA)

	last := len(closes) - 1
	return Indicators{
		EMAShort:   emaShort[last],
		EMALong:    emaLong[last],
		RSI:        rsi[last],
		MACD:       macd[last],
		MACDSignal: macdSignal[last],
		MACDHist:   macdHist[last],
		BBUpper:    bbUpper[last],
		BBMiddle:   bbMiddle[last],
		BBLower:    bbLower[last],
	}, true
}

// determineTrend scores EMA crossover, MACD crossover, and RSI midpoint.
func determineTrend(ind Indicators) Trend {
	score := 0.0
	if ind.EMAShort > ind.EMALong {
		score++
	} else {
		score--
	}
	if ind.MACD > ind.MACDSignal {
		score++
	} else {
		score--
	}
	if ind.RSI > 50 {
		score += 0.5
	} else {
		score -= 0.5
	}

	switch {
	case score >= 1.5:
		return Uptrend
	case score <= -1.5:
		return Downtrend
	default:
		return Neutral
	}
}

func decide(price float64, trend Trend, ind Indicators) Signal {
	sig := Signal{Action: Hold, Price: price}

	switch trend {
	case Uptrend:
		if price <= ind.BBLower && ind.RSI < 35 {
			sig.Action, sig.Confidence, sig.Reason = Buy, 0.8, "Uptrend buy dip"
		} else if price >= ind.BBUpper && ind.RSI > 70 {
			sig.Action, sig.Confidence, sig.Reason = Sell, 0.7, "Uptrend take profit"
		}
	case Downtrend:
		if price >= ind.BBUpper && ind.RSI > 65 {
			sig.Action, sig.Confidence, sig.Reason = Sell, 0.75, "Downtrend sell rally"
		} else if price <= ind.BBLower && ind.RSI < 30 {
			sig.Action, sig.Confidence, sig.Reason = Buy, 0.6, "Downtrend cautious buy"
		}
	default:
		if price <= ind.BBLower && ind.RSI < 30 {
			sig.Action, sig.Confidence, sig.Reason = Buy, 0.7, "Range buy"
		} else if price >= ind.BBUpper && ind.RSI > 70 {
			sig.Action, sig.Confidence, sig.Reason = Sell, 0.7, "Range sell"
		}
	}
	return sig
}
