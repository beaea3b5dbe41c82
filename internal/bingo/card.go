package bingo

import (
	"errors"
	"strings"
)

const (
	Size      = 5
	SlotCount = Size * Size
	FreeIndex = 12
	FreeText  = "FREE"
)

// UnmatchedChallengeIsIgnored: текст, не найденный на карточке (устаревший или
// переименованный между деплоями), просто не отмечает ни одной клетки.
const UnmatchedChallengeIsIgnored = true

var ErrSlotOutOfRange = errors.New("slot index out of range")

// клетка карточки
type Slot struct {
	Index int
	Row   int
	Col   int
	Text  string
}

// фиксированная карточка 5x5, row-major, центр - FREE
var Card = [SlotCount]string{
	"<strong>Find someone who's new to San Diego</strong> (Ask what brought them here!)",
	"<strong>Introduce yourself to someone outside your industry</strong>",
	"<strong>Meet someone who works remotely</strong> (Ask about their favorite workspace!)",
	"<strong>Find someone looking for a co-founder or collaborator</strong> (Ask about their dream project!)",
	"<strong>Meet someone who's attended 3+ networking events this month</strong> (They're a super-connector!)",
	"<strong>Find someone who moved here for a job or startup</strong> (What's their story?)",
	"<strong>Thank the event organizer</strong> (Do it in person or via social media)",
	"<strong>Post a photo with the event organizer thanking them</strong> (Tag them and The Social Coyote!)",
	"<strong>Make 2 intros between people who haven't met before</strong> (Be the connection hero!)",
	"<strong>Snap a photo with someone you just met</strong> (Post it on LinkedIn or Slack)",
	"<strong>Ask someone what their biggest 2025 goal is</strong> (Listen, then offer support!)",
	"<strong>Share a favorite local coffee shop or co-working spot with someone</strong>",
	FreeText,
	"<strong>Ask someone about the best event they've attended this year</strong> (Why was it great?)",
	"<strong>Go to an event you haven't been to before and meet someone new</strong>",
	"<strong>Go to an event in a new part of town you haven't explored and meet someone new</strong>",
	"<strong>Ask someone for their best networking tip</strong> (Write it down and share later!)",
	"<strong>Find someone who has launched a startup</strong> (Ask what stage they're at)",
	"<strong>Find someone who has raised funding for their business</strong> (Ask about their biggest lesson)",
	"<strong>Find someone who bootstrapped their business</strong> (Ask about a key challenge they overcame)",
	"<strong>Schedule a follow-up meeting with someone you met</strong> (Coffee, Zoom, or a walk!)",
	"<strong>Find another Social Coyote in the wild</strong> (Meet another event regular!)",
	"<strong>Howl or say \"Ahwoo!\" at another Social Coyote</strong> (Get them to howl back!)",
	"<strong>Come up with your own networking challenge and tag someone you completed it with! (Explain it in the comments)</strong>",
	"<strong>Find someone who's been to 3+ San Diego tech events this month</strong> (Ask which was their favorite and why!)",
}

// возвращает клетку по индексу 0..24
func SlotAt(index int) (Slot, error) {
	if index < 0 || index >= SlotCount {
		return Slot{}, ErrSlotOutOfRange
	}
	return Slot{
		Index: index,
		Row:   index / Size,
		Col:   index % Size,
		Text:  Card[index],
	}, nil
}

func IsFree(s Slot) bool {
	return s.Index == FreeIndex
}

// ищет не-FREE клетку по тексту задания (точное совпадение после trim)
func Lookup(challenge string) (Slot, bool) {
	text := strings.TrimSpace(challenge)
	if text == "" {
		return Slot{}, false
	}
	for i, c := range Card {
		if i == FreeIndex {
			continue
		}
		if strings.TrimSpace(c) == text {
			s, _ := SlotAt(i)
			return s, true
		}
	}
	return Slot{}, false
}

// все клетки кроме FREE, цель для полного закрытия
func RequiredSlots() []Slot {
	slots := make([]Slot, 0, SlotCount-1)
	for i := range Card {
		if i == FreeIndex {
			continue
		}
		s, _ := SlotAt(i)
		slots = append(slots, s)
	}
	return slots
}

// PlainText убирает разметку <strong> для сообщений и селектов
func PlainText(challenge string) string {
	r := strings.NewReplacer("<strong>", "", "</strong>", "")
	return strings.TrimSpace(r.Replace(challenge))
}
