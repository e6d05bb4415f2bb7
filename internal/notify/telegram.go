// Package notify posts trade alerts to Telegram when credentials are set.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/model"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts messages through the bot API. A nil *Telegram is a valid
// no-op notifier, so callers never need to branch on configuration.
type Telegram struct {
	base   string
	token  string
	chatID string
	http   *http.Client
	log    zerolog.Logger
}

// NewTelegram returns nil when token or chat ID is missing.
func NewTelegram(token, chatID string, log zerolog.Logger) *Telegram {
	if token == "" || chatID == "" {
		return nil
	}
	return &Telegram{
		base:   telegramAPI,
		token:  token,
		chatID: chatID,
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    log.With().Str("component", "telegram").Logger(),
	}
}

// Send posts a plain text message. Errors are logged, not returned: alerts
// must never break the trading path.
func (t *Telegram) Send(ctx context.Context, text string) {
	if t == nil {
		return
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.base, t.token)
	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {text},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		t.log.Warn().Err(err).Msg("telegram request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		t.log.Warn().Err(err).Msg("telegram send failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.log.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("telegram rejected message")
	}
}

// NotifyOrder formats and sends a fill alert.
func (t *Telegram) NotifyOrder(ctx context.Context, order model.Order) {
	if t == nil {
		return
	}
	text := fmt.Sprintf("%s %s %s qty %.6f @ %.6f", order.Bot, order.Side, order.Symbol, order.Quantity, order.Price)
	if order.Side == model.Sell {
		text += fmt.Sprintf(" pnl %.4f", order.Profit)
	}
	if order.Reason != "" {
		text += " (" + order.Reason + ")"
	}
	t.Send(ctx, text)
}
