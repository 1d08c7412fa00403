package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	logx "folionotify/pkg/logx"
)

const defaultTimeout = 15 * time.Second

type TelegramConfig struct {
	// APIURL overrides the Bot API endpoint (tests, local bot servers).
	APIURL  string `json:"api_url,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// Telegram sends HTML messages through the Bot API. The bot never polls; it
// is a send-only client.
type Telegram struct {
	bot  *tele.Bot
	chat tele.Recipient
	log  logx.Logger
}

// chatID accepts a numeric id or an @channel username.
type chatID string

func (c chatID) Recipient() string { return string(c) }

func NewTelegram(cfg TelegramConfig, token, chat string, log logx.Logger) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	chat = strings.TrimSpace(chat)
	if chat == "" {
		return nil, errors.New("telegram chat id is empty")
	}
	timeout := defaultTimeout
	if raw := strings.TrimSpace(cfg.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("telegram.timeout: invalid duration %q", cfg.Timeout)
		}
		timeout = d
	}

	b, err := tele.NewBot(tele.Settings{
		URL:     strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Telegram{bot: b, chat: chatID(chat), log: log.With(logx.String("comp", "notify.telegram"))}, nil
}

// Send delivers text with HTML parse mode and link previews disabled.
func (t *Telegram) Send(ctx context.Context, text string) error {
	return t.send(ctx, text, tele.ModeHTML)
}

// SendPlain delivers text without a parse mode. It backs the log sink.
func (t *Telegram) SendPlain(ctx context.Context, text string) error {
	return t.send(ctx, text, tele.ModeDefault)
}

func (t *Telegram) send(ctx context.Context, text string, mode tele.ParseMode) error {
	chunks := splitText(text, textLimit, string(mode))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		opt := &tele.SendOptions{ParseMode: mode, DisableWebPagePreview: true}
		if _, err := t.bot.Send(t.chat, chunk, opt); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	t.log.Debug("message sent", logx.Int("parts", len(chunks)))
	return nil
}
