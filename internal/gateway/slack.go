package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"howlo/internal/logger"

	"github.com/slack-go/slack"
)

// Slack - шлюз поверх Web API слака
type Slack struct {
	api *slack.Client
	log *slog.Logger
}

func NewSlack(token string) *Slack {
	return &Slack{
		api: slack.New(token),
		log: logger.With("component", "slack"),
	}
}

// имя для объявлений: real name, затем display name, затем логин
func (s *Slack) ResolveDisplayName(ctx context.Context, userID string) (string, error) {
	u, err := s.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("users.info %s: %w", userID, err)
	}
	switch {
	case u.RealName != "":
		return u.RealName, nil
	case u.Profile.DisplayName != "":
		return u.Profile.DisplayName, nil
	}
	return u.Name, nil
}

func (s *Slack) PostEphemeral(ctx context.Context, channel, userID string, msg Message) error {
	if channel == "" {
		return ErrNoChannel
	}
	_, err := s.api.PostEphemeralContext(ctx, channel, userID, msgOptions(msg)...)
	if err != nil {
		return fmt.Errorf("chat.postEphemeral: %w", err)
	}
	return nil
}

func (s *Slack) PostChannelMessage(ctx context.Context, channel string, msg Message) error {
	if channel == "" {
		return ErrNoChannel
	}
	_, _, err := s.api.PostMessageContext(ctx, channel, msgOptions(msg)...)
	if err != nil {
		return fmt.Errorf("chat.postMessage %s: %w", channel, err)
	}
	s.log.Debug("сообщение отправлено", "channel", channel)
	return nil
}

func (s *Slack) OpenInputForm(ctx context.Context, triggerID string, form Form) error {
	if _, err := s.api.OpenViewContext(ctx, triggerID, formView(form)); err != nil {
		return fmt.Errorf("views.open: %w", err)
	}
	return nil
}

func msgOptions(msg Message) []slack.MsgOption {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if blocks := messageBlocks(msg); len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	return opts
}

func messageBlocks(msg Message) []slack.Block {
	var blocks []slack.Block
	if msg.Header != "" {
		blocks = append(blocks, slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, msg.Header, true, false)))
	}
	for _, section := range msg.Sections {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, section, false, false), nil, nil))
	}
	if msg.Context != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, msg.Context, false, false)))
	}
	return blocks
}

// модалка: выбор задания, пользователь ИЛИ имя, место
func formView(form Form) slack.ModalViewRequest {
	plain := func(text string) *slack.TextBlockObject {
		return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
	}

	options := make([]*slack.OptionBlockObject, 0, len(form.Challenges))
	for _, o := range form.Challenges {
		label := o.Label
		if r := []rune(label); len(r) > 75 {
			label = string(r[:72]) + "..."
		}
		options = append(options, slack.NewOptionBlockObject(o.Value, plain(label), nil))
	}
	challenge := slack.NewInputBlock(BlockChallenge, plain("Choose a challenge"), nil,
		slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, plain("Select a challenge..."), ActionChallenge, options...))

	tagUser := slack.NewInputBlock(BlockTagUser, plain("Tag someone in Slack"),
		plain("Pick a workspace user, or leave empty and type a name below"),
		slack.NewOptionsSelectBlockElement(slack.OptTypeUser, plain("Select a user"), ActionTagUser))
	tagUser.Optional = true

	tagName := slack.NewInputBlock(BlockTagName, plain("...or type a name"),
		plain("For people outside Slack"),
		slack.NewPlainTextInputBlockElement(plain("e.g. Jane from Acme"), ActionTagName))
	tagName.Optional = true

	location := slack.NewInputBlock(BlockLocation, plain("Event or Location"), nil,
		slack.NewPlainTextInputBlockElement(plain("Where did this happen? (e.g., SD Startup Week, Coffee Chat)"), ActionLocation))

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      form.CallbackID,
		PrivateMetadata: form.Metadata,
		Title:           plain(form.Title),
		Submit:          plain(form.Submit),
		Close:           plain("Cancel"),
		Blocks:          slack.Blocks{BlockSet: []slack.Block{challenge, tagUser, tagName, location}},
	}
}
