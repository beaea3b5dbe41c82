package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"howlo/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sink - дополнительный получатель объявлений
type Sink interface {
	Post(ctx context.Context, msg Message) error
}

// Telegram дублирует объявления в чат телеграма
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

var slackMention = regexp.MustCompile(`<[@#!]([^>|]+)(?:\|([^>]+))?>`)

// упоминания слака в телеграме бессмысленны: оставляем подпись или id
func telegramText(msg Message) string {
	return slackMention.ReplaceAllStringFunc(msg.Plain(), func(m string) string {
		sub := slackMention.FindStringSubmatch(m)
		if sub[2] != "" {
			return sub[2]
		}
		return "@" + sub[1]
	})
}

func (t *Telegram) Post(_ context.Context, msg Message) error {
	m := tgbotapi.NewMessage(t.chatID, telegramText(msg))
	m.DisableWebPagePreview = true
	if _, err := t.bot.Send(m); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Mirror отправляет объявления основного канала ещё и во все sinks.
// Ошибки зеркал только логируются.
type Mirror struct {
	Gateway
	channel string
	sinks   []Sink
	log     *slog.Logger
}

func NewMirror(primary Gateway, announcementsChannel string, sinks ...Sink) *Mirror {
	return &Mirror{
		Gateway: primary,
		channel: announcementsChannel,
		sinks:   sinks,
		log:     logger.With("component", "mirror"),
	}
}

func (m *Mirror) PostChannelMessage(ctx context.Context, channel string, msg Message) error {
	if err := m.Gateway.PostChannelMessage(ctx, channel, msg); err != nil {
		return err
	}
	if channel != m.channel {
		return nil
	}
	for _, s := range m.sinks {
		if err := s.Post(ctx, msg); err != nil {
			m.log.Warn("зеркало объявления не доставлено", "error", err)
		}
	}
	return nil
}
