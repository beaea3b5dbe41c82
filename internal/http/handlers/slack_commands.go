package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"howlo/internal/bingo"
	"howlo/internal/domain"
	"howlo/internal/gateway"
	"howlo/internal/logger"
	"howlo/internal/period"
	"howlo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
)

type commandKind int

const (
	commandOpenForm commandKind = iota
	commandLeaderboard
	commandProgress
	commandCard
	commandRules
)

// commandRequest - разобранная слэш-команда /howlo [leaderboard|progress|card|rules]
type commandRequest struct {
	Kind      commandKind
	UserID    string
	ChannelID string
	TriggerID string
}

func parseCommand(s slack.SlashCommand) commandRequest {
	req := commandRequest{
		Kind:      commandOpenForm,
		UserID:    s.UserID,
		ChannelID: s.ChannelID,
		TriggerID: s.TriggerID,
	}
	switch strings.ToLower(strings.TrimSpace(s.Text)) {
	case "leaderboard":
		req.Kind = commandLeaderboard
	case "progress":
		req.Kind = commandProgress
	case "card":
		req.Kind = commandCard
	case "rules", "help":
		req.Kind = commandRules
	}
	return req
}

// CommandUserID - ключ rate limit для слэш-команд
func CommandUserID(c *gin.Context) string {
	return c.PostForm("user_id")
}

// RateLimited - ответ слаку при превышении лимита
func RateLimited(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"response_type": "ephemeral",
		"text":          "Whoa there, coyote! 🐺 Too many commands in a row. Try again in a minute.",
	})
}

// SlackCommand - POST /slack/commands
func (h *Handler) SlackCommand(c *gin.Context) {
	s, err := slack.SlashCommandParse(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command"})
		return
	}
	req := parseCommand(s)
	ctx := c.Request.Context()
	log := logger.With("component", "slack_commands", "user", req.UserID, "kind", req.Kind)

	switch req.Kind {
	case commandOpenForm:
		err = h.Gateway.OpenInputForm(ctx, req.TriggerID, accomplishmentForm(req.ChannelID))
	case commandLeaderboard:
		err = h.ephemeral(ctx, req, h.leaderboardMessage(ctx, req.UserID))
	case commandProgress:
		var msg gateway.Message
		msg, err = h.progressMessage(ctx, req.UserID)
		if err == nil {
			err = h.ephemeral(ctx, req, msg)
		}
	case commandCard:
		url := h.blankCardURL(req.UserID)
		err = h.ephemeral(ctx, req, gateway.Message{Text: "View your HOWLO Card here: " + url})
	case commandRules:
		err = h.ephemeral(ctx, req, rulesMessage())
	}

	if err != nil {
		log.Error("слэш-команда не выполнена", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"response_type": "ephemeral",
			"text":          "Something went wrong, please try again.",
		})
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ephemeral(ctx context.Context, req commandRequest, msg gateway.Message) error {
	return h.Gateway.PostEphemeral(ctx, req.ChannelID, req.UserID, msg)
}

func accomplishmentForm(channelID string) gateway.Form {
	slots := bingo.RequiredSlots()
	options := make([]gateway.Option, 0, len(slots))
	for _, s := range slots {
		options = append(options, gateway.Option{
			Label: bingo.PlainText(s.Text),
			Value: strconv.Itoa(s.Index),
		})
	}
	return gateway.Form{
		CallbackID: gateway.CallbackAccomplishment,
		Title:      "Record Accomplishment",
		Submit:     "Submit",
		Metadata:   channelID,
		Challenges: options,
	}
}

func (h *Handler) leaderboardMessage(ctx context.Context, userID string) gateway.Message {
	now := h.now()
	lb, err := h.Board.GetLeaderboard(ctx, now, service.DefaultDisplayLimit)
	if err != nil {
		return gateway.Message{Text: "The leaderboard is unavailable right now. Please try again later."}
	}
	if lb.Period.Regime == period.RegimePreLaunch {
		return gateway.Message{Text: "The HOWLO leaderboard hasn't opened yet. Keep recording challenges, the competition starts soon! 🐺"}
	}
	if len(lb.Entries) == 0 {
		return gateway.Message{Text: fmt.Sprintf("No achievements recorded yet for %s! Be the first to complete a challenge! 🎯", lb.Period.Label())}
	}

	service.WithDisplayNames(ctx, h.Gateway, lb.Entries)
	var b strings.Builder
	for _, e := range lb.Entries {
		fmt.Fprintf(&b, "%s *%s* - %d XP (%d achievements)", service.Medal(e.Rank), e.DisplayName, e.TotalXP, e.AccomplishmentCount)
		if e.HasFullBoardBonus {
			b.WriteString(" 🐺")
		} else if e.HasLineBonus {
			b.WriteString(" 🎉")
		}
		b.WriteString("\n")
	}

	standing := "unavailable"
	if rank, err := h.Board.GetUserRank(ctx, userID, now); err != nil {
		logger.Warn("место пользователя не получено", "user", userID, "error", err)
	} else {
		standing = service.FormatRank(rank)
	}
	return gateway.Message{
		Text:     "HOWLO Leaderboard - " + lb.Period.Label(),
		Header:   "🏆 HOWLO Leaderboard - " + lb.Period.Label() + " 🏆",
		Sections: []string{b.String()},
		Context:  "Your standing: " + standing,
	}
}

func (h *Handler) progressMessage(ctx context.Context, userID string) (gateway.Message, error) {
	now := h.now()
	pr, err := h.Scoring.Progress(ctx, userID, now)
	if err != nil {
		return gateway.Message{}, err
	}
	rank, err := h.Board.GetUserRank(ctx, userID, now)
	if err != nil {
		return gateway.Message{}, err
	}

	summary := fmt.Sprintf("*%d/%d* challenges • *%d* bingo lines • *%d XP*\nRank: %s",
		pr.Completed, bingo.SlotCount-1, len(pr.Lines), pr.TotalXP, service.FormatRank(rank))
	if pr.FullBoard {
		summary += "\n🐺 Full board complete!"
	}
	url := h.CardURL(userID)
	return gateway.Message{
		Text:     "View your HOWLO Bingo progress: " + url,
		Header:   "Your HOWLO progress - " + pr.Period.Label(),
		Sections: []string{summary, "<" + url + "|View your card>"},
	}, nil
}

func rulesMessage() gateway.Message {
	rules := strings.Join([]string{
		"*How to Play HOWLO* 🐺",
		"Meet new pack members at tech events and fill your 5×5 card.",
		"*Commands*",
		"• `/howlo` record a completed challenge",
		"• `/howlo progress` see your card, XP and rank",
		"• `/howlo card` view the blank card",
		"• `/howlo leaderboard` see the top coyotes",
		"*Logging a challenge*",
		"1. Type `/howlo` and pick the challenge\n2. Tag the person you connected with (a Slack user or a name)\n3. Enter the event or location",
		"*XP*",
		fmt.Sprintf("• %d XP per achievement\n• +%d XP for your first bingo line (row, column or diagonal) each period\n• +%d XP for completing the whole card each period",
			domain.BaseXP, domain.LineBonusXP, domain.FullBoardBonusXP),
		"Leaderboards reset every month. The center square is FREE.",
	}, "\n")
	return gateway.Message{Text: "How to Play HOWLO", Sections: []string{rules}}
}
