package gateway

import (
	"context"
	"log/slog"
	"sync"

	"howlo/internal/logger"
)

type Posted struct {
	Channel string
	UserID  string
	Message Message
}

// Recorder - шлюз без мессенджера: пишет всё в лог и запоминает.
// Используется при пустом SLACK_BOT_TOKEN и в тестах.
type Recorder struct {
	mu         sync.Mutex
	Names      map[string]string
	Fail       error
	Posts      []Posted
	Ephemerals []Posted
	Forms      []Form
	log        *slog.Logger
}

func NewRecorder() *Recorder {
	return &Recorder{
		Names: make(map[string]string),
		log:   logger.With("component", "recorder"),
	}
}

func (r *Recorder) ResolveDisplayName(_ context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Names[userID], nil
}

func (r *Recorder) PostEphemeral(_ context.Context, channel, userID string, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Ephemerals = append(r.Ephemerals, Posted{Channel: channel, UserID: userID, Message: msg})
	r.log.Info("ephemeral", "channel", channel, "user", userID, "text", msg.Text)
	return nil
}

func (r *Recorder) PostChannelMessage(_ context.Context, channel string, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if channel == "" {
		return ErrNoChannel
	}
	r.Posts = append(r.Posts, Posted{Channel: channel, Message: msg})
	r.log.Info("message", "channel", channel, "text", msg.Text)
	return nil
}

func (r *Recorder) OpenInputForm(_ context.Context, triggerID string, form Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Forms = append(r.Forms, form)
	return nil
}

// PostsTo - копия сообщений, отправленных в канал
func (r *Recorder) PostsTo(channel string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, p := range r.Posts {
		if p.Channel == channel {
			out = append(out, p.Message)
		}
	}
	return out
}

func (r *Recorder) SetFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fail = err
}

// Post позволяет использовать Recorder как зеркало
func (r *Recorder) Post(ctx context.Context, msg Message) error {
	return r.PostChannelMessage(ctx, "mirror", msg)
}
