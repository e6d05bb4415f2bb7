// Package config exposes strongly typed application configuration structs loaded from YAML,
// with exchange credentials and runtime toggles sourced from the environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, dashboard binding, and logging.
type App struct {
	Name          string `yaml:"name"`
	LogLevel      string `yaml:"log_level"`
	DashboardHost string `yaml:"dashboard_host"`
	DashboardPort int    `yaml:"dashboard_port"`
	MetricsAddr   string `yaml:"metrics_addr"`
	LogsDir       string `yaml:"logs_dir"`
	TemplatesDir  string `yaml:"templates_dir"`
}

// Trading holds the primary symbol and position sizing defaults shared by the bots.
type Trading struct {
	Symbol          string  `yaml:"symbol"`
	Quantity        float64 `yaml:"quantity"`
	MaxPositionSize float64 `yaml:"max_position_size"`
	StopLoss        float64 `yaml:"stop_loss"`
	ProfitTarget    float64 `yaml:"profit_target"`
}

// Indicators groups the technical indicator periods used by the scalping strategy.
type Indicators struct {
	EMAShort   int `yaml:"ema_short"`
	EMALong    int `yaml:"ema_long"`
	RSIPeriod  int `yaml:"rsi_period"`
	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`
}

// Risk encodes guard-rails for how much size the executors may take on.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
	MaxDrawdown         float64 `yaml:"max_drawdown"`
	DailyLossLimit      float64 `yaml:"daily_loss_limit"`
}

// Listing tunes the new-listing bot.
type Listing struct {
	ProfitTarget    float64 `yaml:"profit_target"`
	StopLoss        float64 `yaml:"stop_loss"`
	PollIntervalSec int     `yaml:"poll_interval_sec"`
	BalanceFraction float64 `yaml:"balance_fraction"`
}

// Volume tunes the high-volume bot.
type Volume struct {
	SpikeThreshold  float64 `yaml:"spike_threshold"`
	ScoreThreshold  float64 `yaml:"score_threshold"`
	ScanIntervalSec int     `yaml:"scan_interval_sec"`
	BalanceFraction float64 `yaml:"balance_fraction"`
	TopN            int     `yaml:"top_n"`
}

// Paper captures dry-run account settings.
type Paper struct {
	StartingCash float64 `yaml:"starting_cash"`
	JournalPath  string  `yaml:"journal_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Trading    Trading    `yaml:"trading"`
	Indicators Indicators `yaml:"indicators"`
	Risk       Risk       `yaml:"risk"`
	Listing    Listing    `yaml:"listing"`
	Volume     Volume     `yaml:"volume"`
	Paper      Paper      `yaml:"paper"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "multi-bot-trading-dashboard"
	}
	if c.App.DashboardHost == "" {
		c.App.DashboardHost = "0.0.0.0"
	}
	if c.App.DashboardPort == 0 {
		c.App.DashboardPort = 5002
	}
	if c.App.LogsDir == "" {
		c.App.LogsDir = "logs"
	}
	if c.App.TemplatesDir == "" {
		c.App.TemplatesDir = "templates"
	}
	if c.Trading.Symbol == "" {
		c.Trading.Symbol = "BTCUSDT"
	}
	if c.Trading.Quantity == 0 {
		c.Trading.Quantity = 0.001
	}
	if c.Trading.MaxPositionSize == 0 {
		c.Trading.MaxPositionSize = 0.01
	}
	if c.Trading.StopLoss == 0 {
		c.Trading.StopLoss = 0.01
	}
	if c.Trading.ProfitTarget == 0 {
		c.Trading.ProfitTarget = 0.02
	}
	if c.Indicators.EMAShort == 0 {
		c.Indicators.EMAShort = 9
	}
	if c.Indicators.EMALong == 0 {
		c.Indicators.EMALong = 21
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = 9
	}
	if c.Risk.MaxDrawdown == 0 {
		c.Risk.MaxDrawdown = 0.05
	}
	if c.Risk.DailyLossLimit == 0 {
		c.Risk.DailyLossLimit = 0.02
	}
	if c.Listing.ProfitTarget == 0 {
		c.Listing.ProfitTarget = 0.05
	}
	if c.Listing.StopLoss == 0 {
		c.Listing.StopLoss = 0.03
	}
	if c.Listing.PollIntervalSec == 0 {
		c.Listing.PollIntervalSec = 60
	}
	if c.Listing.BalanceFraction == 0 {
		c.Listing.BalanceFraction = 0.02
	}
	if c.Volume.SpikeThreshold == 0 {
		c.Volume.SpikeThreshold = 3.0
	}
	if c.Volume.ScoreThreshold == 0 {
		c.Volume.ScoreThreshold = 80
	}
	if c.Volume.ScanIntervalSec == 0 {
		c.Volume.ScanIntervalSec = 300
	}
	if c.Volume.BalanceFraction == 0 {
		c.Volume.BalanceFraction = 0.03
	}
	if c.Volume.TopN == 0 {
		c.Volume.TopN = 5
	}
	if c.Paper.StartingCash == 0 {
		c.Paper.StartingCash = 10000
	}
	if c.Paper.JournalPath == "" {
		c.Paper.JournalPath = "logs/orders.jsonl"
	}
}

// BaseAsset derives the base asset from the primary symbol, e.g. BTC from BTCUSDT.
func (t Trading) BaseAsset() string {
	const quote = "USDT"
	if len(t.Symbol) > len(quote) && t.Symbol[len(t.Symbol)-len(quote):] == quote {
		return t.Symbol[:len(t.Symbol)-len(quote)]
	}
	return t.Symbol
}

// QuoteAsset is fixed: every bot in the system trades USDT pairs.
func (t Trading) QuoteAsset() string { return "USDT" }
