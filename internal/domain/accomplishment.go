package domain

import (
	"strings"
	"time"
)

// XP начисления
const (
	BaseXP           = 100
	LineBonusXP      = 500
	FullBoardBonusXP = 1000
)

// одна выполненная клетка карточки одним пользователем
type Accomplishment struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	Challenge       string     `db:"challenge" json:"challenge"`
	TaggedUser      string     `db:"tagged_user" json:"tagged_user"`
	CompanionUserID string     `db:"companion_user_id" json:"companion_user_id,omitempty"`
	EventLocation   string     `db:"event_location" json:"event_location"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	Month           int        `db:"month" json:"month"` // 0-11
	Year            int        `db:"year" json:"year"`
	PeriodKey       string     `db:"period_key" json:"period_key"`
	XP              int        `db:"xp" json:"xp"`
	LineBonus       bool       `db:"line_bonus" json:"line_bonus"`
	LineBonusAt     *time.Time `db:"line_bonus_at" json:"line_bonus_at,omitempty"`
	FullBoardBonus  bool       `db:"full_board_bonus" json:"full_board_bonus"`
	FullBoardAt     *time.Time `db:"full_board_at" json:"full_board_at,omitempty"`
}

// вид разового бонуса
type BonusKind string

const (
	BonusLine      BonusKind = "line"
	BonusFullBoard BonusKind = "full_board"
)

// XP за бонус
func (k BonusKind) XP() int {
	switch k {
	case BonusLine:
		return LineBonusXP
	case BonusFullBoard:
		return FullBoardBonusXP
	}
	return 0
}

// Companion - с кем выполнено задание: пользователь воркспейса или имя вне слака
type Companion struct {
	UserID string
	Name   string
}

// сколько способов указания компаньона заполнено
func (c Companion) methods() int {
	n := 0
	if strings.TrimSpace(c.UserID) != "" {
		n++
	}
	if strings.TrimSpace(c.Name) != "" {
		n++
	}
	return n
}

// ровно один способ указан
func (c Companion) Valid() bool {
	return c.methods() == 1
}

// Tag возвращает строку для записи: <@U123> или @Name
func (c Companion) Tag() string {
	if id := strings.TrimSpace(c.UserID); id != "" {
		return "<@" + id + ">"
	}
	name := strings.TrimSpace(c.Name)
	if strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}

// строка рейтинга за период
type LeaderboardEntry struct {
	Rank                int    `json:"rank"`
	UserID              string `json:"user_id"`
	DisplayName         string `json:"display_name,omitempty"`
	TotalXP             int    `json:"total_xp"`
	AccomplishmentCount int    `json:"accomplishment_count"`
	HasLineBonus        bool   `json:"has_line_bonus"`
	HasFullBoardBonus   bool   `json:"has_full_board_bonus"`
}
