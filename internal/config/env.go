package config

import (
	"errors"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Env carries credentials and runtime toggles that never belong in the YAML file.
type Env struct {
	APIKey    string `env:"BINANCE_API_KEY"`
	APISecret string `env:"BINANCE_API_SECRET"`

	// Live selects the production endpoints; default is the spot testnet.
	Live   bool `env:"LIVE" envDefault:"false"`
	DryRun bool `env:"DRY_RUN" envDefault:"true"`

	TestnetAPIURL string `env:"TESTNET_API_URL" envDefault:"https://testnet.binance.vision"`
	ProdAPIURL    string `env:"PROD_API_URL" envDefault:"https://api.binance.com"`

	// FeedProvider selects the kline source: binance or stub.
	FeedProvider string `env:"FEED_PROVIDER" envDefault:"binance"`
	WSBaseURL    string `env:"WS_BASE_URL"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`
}

// LoadEnv parses credentials and toggles from the process environment,
// loading a .env file first when one exists.
func LoadEnv() (Env, error) {
	_ = godotenv.Load() // best-effort
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// Validate enforces the startup preconditions: live order flow needs credentials.
func (e Env) Validate() error {
	if !e.DryRun && (e.APIKey == "" || e.APISecret == "") {
		return errors.New("BINANCE_API_KEY and BINANCE_API_SECRET are required when DRY_RUN is disabled")
	}
	return nil
}

// BaseURL returns the REST endpoint matching the Live toggle.
func (e Env) BaseURL() string {
	if e.Live {
		return e.ProdAPIURL
	}
	return e.TestnetAPIURL
}
