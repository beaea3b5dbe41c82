package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"howlo/internal/bingo"
	"howlo/internal/domain"
	"howlo/internal/gateway"
	"howlo/internal/logger"
	"howlo/internal/period"
)

// Messenger - часть шлюза, через которую идут объявления
type Messenger interface {
	NameResolver
	PostChannelMessage(ctx context.Context, channel string, msg gateway.Message) error
}

// Announcer собирает тексты объявлений и отправляет их
type Announcer struct {
	messenger  Messenger
	channel    string
	classifier *period.Classifier
	// ссылка на карточку пользователя; nil - без ссылки
	cardURL func(userID string) string
	log     *slog.Logger
}

func NewAnnouncer(m Messenger, channel string, classifier *period.Classifier, cardURL func(userID string) string) *Announcer {
	return &Announcer{
		messenger:  m,
		channel:    channel,
		classifier: classifier,
		cardURL:    cardURL,
		log:        logger.With("component", "announcer"),
	}
}

func (a *Announcer) announce(ctx context.Context, msg gateway.Message) error {
	if a.channel == "" {
		return gateway.ErrNoChannel
	}
	return a.messenger.PostChannelMessage(ctx, a.channel, msg)
}

// LeaderChange - "👑 NEW LEADERBOARD CHAMPION! 👑"
func (a *Announcer) LeaderChange(ctx context.Context, ch *LeaderChange) error {
	newName := displayName(ctx, a.messenger, ch.NewLeader.UserID)
	prevName := displayName(ctx, a.messenger, ch.PreviousLeader.UserID)

	footer := "View the full monthly leaderboard with `/howlo leaderboard`"
	if ch.Period.Regime == period.RegimeLaunch {
		footer = fmt.Sprintf("We're in the launch period! The leaderboard runs from %s. Check your standing with `/howlo leaderboard`",
			a.classifier.LaunchWindowLabel())
	}

	return a.announce(ctx, gateway.Message{
		Text:   newName + " has taken the #1 spot on the HOWLO leaderboard!",
		Header: "👑 NEW LEADERBOARD CHAMPION! 👑",
		Sections: []string{
			fmt.Sprintf("*%s* has taken the #1 spot with *%d XP*!", newName, ch.NewLeader.TotalXP),
			fmt.Sprintf("They've overtaken %s in an exciting turn of events! The competition is heating up!", prevName),
		},
		Context: footer,
	})
}

// Launch - объявление о старте системы XP
func (a *Announcer) Launch(ctx context.Context) error {
	next := a.classifier.Classify(a.classifier.FirstResetStart)
	body := fmt.Sprintf("*🚀 HOWLO XP System is Now Live! 🚀*\n\n"+
		"The HOWLO XP system has officially launched! From %s:\n"+
		"• Earn %d XP for each achievement you record\n"+
		"• Get %d XP bonus for completing a bingo\n"+
		"• Unlock %d XP bonus for completing all challenges\n\n"+
		"This extended launch period will run until %s, with the first monthly reset on %s.\n\n"+
		"Good luck and have fun competing! Check the current standings with `/howlo leaderboard`",
		a.classifier.LaunchWindowLabel(),
		domain.BaseXP, domain.LineBonusXP, domain.FullBoardBonusXP,
		a.classifier.FirstResetStart.In(a.classifier.Location).AddDate(0, 0, -1).Format("January 2"),
		period.MonthName(next.Month)+" 1",
	)
	return a.announce(ctx, gateway.Message{
		Text:     "HOWLO XP System is Now Live!",
		Sections: []string{body},
	})
}

// LaunchWinners - итоги стартового периода
func (a *Announcer) LaunchWinners(ctx context.Context, winners []domain.LeaderboardEntry) error {
	next := a.classifier.Classify(a.classifier.FirstResetStart)
	var b strings.Builder
	fmt.Fprintf(&b, "*🏆 HOWLO Launch Period Results - %s 🏆*\n\n", a.classifier.LaunchWindowLabel())
	a.writeWinners(ctx, &b, winners)
	fmt.Fprintf(&b, "\n*The first monthly competition has started!* The %s leaderboard is now active.\n", next.Label())
	b.WriteString("All XP counters have been reset for the new month, but your achievements are preserved in the records!")

	return a.announce(ctx, gateway.Message{
		Text:     "HOWLO Launch Period Winners Announced!",
		Sections: []string{b.String()},
	})
}

// MonthWinners - итоги календарного месяца
func (a *Announcer) MonthWinners(ctx context.Context, winners []domain.LeaderboardEntry, month, year int) error {
	nm, ny := period.Next(month, year)
	var b strings.Builder
	fmt.Fprintf(&b, "*🏆 HOWLO Leaderboard - %s %d FINAL RESULTS 🏆*\n\n", period.MonthName(month), year)
	a.writeWinners(ctx, &b, winners)
	fmt.Fprintf(&b, "\n*A new month has begun! The %s %d leaderboard is now active.*\n", period.MonthName(nm), ny)
	b.WriteString("All XP counters have been reset for the new month, but your achievements are preserved in the records!")

	return a.announce(ctx, gateway.Message{
		Text:     fmt.Sprintf("HOWLO %s Winners Announced!", period.MonthName(month)),
		Sections: []string{b.String()},
	})
}

func (a *Announcer) writeWinners(ctx context.Context, b *strings.Builder, winners []domain.LeaderboardEntry) {
	for i, w := range winners {
		fmt.Fprintf(b, "%s *%s* - %d XP\n", Medal(i+1), displayName(ctx, a.messenger, w.UserID), w.TotalXP)
	}
}

// AchievementRecorded публикует запись в канале, откуда пришла форма:
// подтверждение, личное сообщение отмеченному, HOWLO и DENOUT.
// Ошибки отдельных сообщений не мешают остальным.
func (a *Announcer) AchievementRecorded(ctx context.Context, channel string, res *AchievementResult) error {
	rec := res.Record
	challenge := bingo.PlainText(rec.Challenge)
	var errs []error

	if channel != "" {
		text := fmt.Sprintf("Accomplishment recorded for <@%s>: *\"%s\"* with *%s* at *%s*!",
			rec.UserID, challenge, rec.TaggedUser, rec.EventLocation)
		errs = append(errs, a.messenger.PostChannelMessage(ctx, channel, gateway.Message{Text: text}))
	}

	if rec.CompanionUserID != "" && rec.CompanionUserID != rec.UserID {
		tagger := displayName(ctx, a.messenger, rec.UserID)
		text := fmt.Sprintf("Hey there! *%s* (<@%s>) just tagged you in a HOWLO challenge: *\"%s\"* at *%s*.",
			tagger, rec.UserID, challenge, rec.EventLocation)
		if channel != "" {
			text += fmt.Sprintf(" Check out <#%s> to see their progress!", channel)
		}
		if err := a.messenger.PostChannelMessage(ctx, rec.CompanionUserID, gateway.Message{Text: text}); err != nil {
			a.log.Warn("не удалось написать отмеченному", "user", rec.CompanionUserID, "error", err)
		}
	}

	if channel != "" && len(res.NewLines) > 0 {
		text := fmt.Sprintf("🎉 *HOWLO!* 🎉 <@%s> has completed a line!", rec.UserID)
		if res.LineBonusAwarded {
			text += fmt.Sprintf(" +%d XP bonus!", domain.LineBonusXP)
		}
		errs = append(errs, a.messenger.PostChannelMessage(ctx, channel, gateway.Message{Text: text + a.cardLink(rec.UserID)}))
	}

	if channel != "" && res.BoardCompleted {
		text := fmt.Sprintf("🐺 *DENOUT!* 🐺 <@%s> has completed every challenge on the card!", rec.UserID)
		if res.FullBoardBonusAwarded {
			text += fmt.Sprintf(" +%d XP bonus!", domain.FullBoardBonusXP)
		}
		errs = append(errs, a.messenger.PostChannelMessage(ctx, channel, gateway.Message{Text: text + a.cardLink(rec.UserID)}))
	}

	return errors.Join(errs...)
}

func (a *Announcer) cardLink(userID string) string {
	if a.cardURL == nil {
		return ""
	}
	if u := a.cardURL(userID); u != "" {
		return " View their card here: " + u
	}
	return ""
}
