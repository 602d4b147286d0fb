package notify

import (
	"context"
	"fmt"
	"unicode/utf8"

	"envelope_bot/internal/modules/config"
	"envelope_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Send(ctx context.Context, msg string) error
}

// лимит Telegram на длину сообщения
const maxMessageLen = 4096

type sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram — пассивный нотифайер в один чат.
type Telegram struct {
	bot    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Send(ctx context.Context, msg string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, part := range split(msg, maxMessageLen) {
		if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, part)); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// split режет текст по границам рун, стараясь резать по переводу строки.
func split(msg string, limit int) []string {
	var out []string
	for utf8.RuneCountInString(msg) > limit {
		cut, runes, lastNL := 0, 0, -1
		for i, r := range msg {
			if runes == limit {
				cut = i
				break
			}
			if r == '\n' {
				lastNL = i
			}
			runes++
		}
		if lastNL > 0 {
			cut = lastNL + 1
		}
		out = append(out, msg[:cut])
		msg = msg[cut:]
	}
	if msg != "" {
		out = append(out, msg)
	}
	return out
}

// Stdout — заглушка, пишет в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Send(_ context.Context, msg string) error {
	logger.Info("[NOTIFY] %s", msg)
	return nil
}

// New выбирает Telegram при заданных токене и чате, иначе Stdout.
func New(cfg *config.Config) (Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return NewStdout(), nil
	}
	return NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
}
