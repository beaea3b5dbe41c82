package gateway

import (
	"context"
	"errors"
	"strings"
)

var ErrNoChannel = errors.New("channel is not configured")

// Message - содержимое сообщения, которое собирает ядро.
// Отрисовка (блоки слака, текст телеграма) - дело конкретного шлюза.
type Message struct {
	// текст уведомления и запасной вариант для клиентов без блоков
	Text     string
	Header   string
	Sections []string
	Context  string
}

// Plain - сообщение целиком одним текстом
func (m Message) Plain() string {
	var parts []string
	if m.Header != "" {
		parts = append(parts, m.Header)
	}
	parts = append(parts, m.Sections...)
	if m.Context != "" {
		parts = append(parts, m.Context)
	}
	if len(parts) == 0 {
		return m.Text
	}
	return strings.Join(parts, "\n\n")
}

// идентификаторы блоков формы; по ним разбирается отправка и привязываются ошибки
const (
	CallbackAccomplishment = "bingo_accomplishment"

	BlockChallenge  = "challenge_block"
	ActionChallenge = "challenge_select"
	BlockTagUser    = "tag_block"
	ActionTagUser   = "tag_user"
	BlockTagName    = "tag_name_block"
	ActionTagName   = "tag_name_input"
	BlockLocation   = "event_location_block"
	ActionLocation  = "event_location_input"
)

type Option struct {
	Label string
	Value string
}

// Form - форма записи достижения
type Form struct {
	CallbackID string
	Title      string
	Submit     string
	// возвращается при отправке (id канала, откуда вызвана команда)
	Metadata   string
	Challenges []Option
}

// Gateway - всё, что ядру нужно от мессенджера
type Gateway interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
	PostEphemeral(ctx context.Context, channel, userID string, msg Message) error
	// channel может быть id пользователя - тогда это личное сообщение
	PostChannelMessage(ctx context.Context, channel string, msg Message) error
	OpenInputForm(ctx context.Context, triggerID string, form Form) error
}
