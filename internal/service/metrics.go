package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	achievementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "howlo",
		Name:      "achievements_recorded_total",
		Help:      "Accomplishments stored, by period regime.",
	}, []string{"regime"})

	achievementsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "howlo",
		Name:      "achievements_rejected_total",
		Help:      "Submissions rejected by validation, by form field.",
	}, []string{"field"})

	bonusesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "howlo",
		Name:      "bonuses_awarded_total",
		Help:      "One-time line and full board bonuses awarded.",
	}, []string{"kind"})

	leaderChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "howlo",
		Name:      "leader_changes_total",
		Help:      "Detected changes of the #1 leaderboard position.",
	})

	announcementsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "howlo",
		Name:      "period_announcements_total",
		Help:      "Period boundary announcements, by kind and outcome.",
	}, []string{"kind", "status"})
)
