package domain

import "time"

// отметка о том, что объявление границы периода уже отправлено
type PeriodAnnouncement struct {
	Kind        AnnouncementKind `db:"kind" json:"kind"`
	PeriodKey   string           `db:"period_key" json:"period_key"`
	AnnouncedAt time.Time        `db:"announced_at" json:"announced_at"`
}

type AnnouncementKind string

const (
	AnnouncementLaunch        AnnouncementKind = "launch"
	AnnouncementLaunchWinners AnnouncementKind = "launch_winners"
	AnnouncementMonthWinners  AnnouncementKind = "month_winners"
)
