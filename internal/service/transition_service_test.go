package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"howlo/internal/domain"
	"howlo/internal/period"
)

func newTransitions(env *testEnv) *TransitionService {
	return NewTransitionService(env.classifier, env.board, env.store, env.announcer)
}

func announced(t *testing.T, env *testEnv, kind domain.AnnouncementKind, key string) bool {
	t.Helper()
	ok, err := env.store.IsAnnounced(context.Background(), kind, key)
	if err != nil {
		t.Fatalf("IsAnnounced: %v", err)
	}
	return ok
}

func TestLaunchAnnouncementOnce(t *testing.T) {
	env := newTestEnv(t)
	ts := newTransitions(env)
	ctx := context.Background()
	launchDay := launchStart.Add(10 * time.Hour)

	for i := 0; i < 3; i++ {
		if err := ts.RunPeriodTransitionCheck(ctx, launchDay.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RunPeriodTransitionCheck: %v", err)
		}
	}

	posts := env.gw.PostsTo(testChannel)
	if len(posts) != 1 {
		t.Fatalf("ожидалось одно объявление, получено %d", len(posts))
	}
	if posts[0].Text != "HOWLO XP System is Now Live!" {
		t.Fatalf("Text = %q", posts[0].Text)
	}
	if !strings.Contains(posts[0].Plain(), "March 24 to April 30, 2025") {
		t.Fatalf("нет дат периода: %s", posts[0].Plain())
	}
	if !announced(t, env, domain.AnnouncementLaunch, period.LaunchKey) {
		t.Fatalf("флаг запуска не записан")
	}
}

func TestLaunchWinnersOnFirstResetDay(t *testing.T) {
	env := newTestEnv(t)
	env.gw.Names["U1"] = "Ada"
	env.recordMany(t, "U1", []int{0, 1, 2}, inLaunch)
	env.recordMany(t, "U2", []int{0, 1}, inLaunch)
	env.record(t, "U3", 0, inLaunch)
	env.record(t, "U4", 0, inLaunch.Add(time.Hour))

	ts := newTransitions(env)
	resetDay := resetStart.Add(8 * time.Hour)
	if err := ts.RunPeriodTransitionCheck(context.Background(), resetDay); err != nil {
		t.Fatalf("RunPeriodTransitionCheck: %v", err)
	}
	if err := ts.RunPeriodTransitionCheck(context.Background(), resetDay.Add(5*time.Minute)); err != nil {
		t.Fatalf("RunPeriodTransitionCheck: %v", err)
	}

	posts := env.gw.PostsTo(testChannel)
	if len(posts) != 1 {
		t.Fatalf("ожидалось одно объявление, получено %d", len(posts))
	}
	body := posts[0].Plain()
	for _, want := range []string{"🥇 *Ada* - 300 XP", "🥈 *<@U2>* - 200 XP", "🥉 *<@U3>* - 100 XP", "May 2025 leaderboard"} {
		if !strings.Contains(body, want) {
			t.Fatalf("в объявлении нет %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "U4") {
		t.Fatalf("объявляются только трое: %s", body)
	}
	if !announced(t, env, domain.AnnouncementLaunchWinners, period.LaunchKey) {
		t.Fatalf("флаг итогов старта не записан")
	}
	// апрель целиком в стартовом периоде: отдельных итогов месяца нет
	if announced(t, env, domain.AnnouncementMonthWinners, period.MonthKey(3, 2025)) {
		t.Fatalf("итоги апреля не объявляются")
	}
}

func TestNoWinnersNoAnnouncement(t *testing.T) {
	env := newTestEnv(t)
	ts := newTransitions(env)
	if err := ts.RunPeriodTransitionCheck(context.Background(), resetStart.Add(time.Hour)); err != nil {
		t.Fatalf("RunPeriodTransitionCheck: %v", err)
	}
	if len(env.gw.PostsTo(testChannel)) != 0 {
		t.Fatalf("без участников ничего не публикуется")
	}
	if announced(t, env, domain.AnnouncementLaunchWinners, period.LaunchKey) {
		t.Fatalf("без участников флаг не ставится")
	}
}

func TestMonthWinnersOnFirstOfMonth(t *testing.T) {
	env := newTestEnv(t)
	env.recordMany(t, "U1", []int{0, 1}, time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC))
	ts := newTransitions(env)

	if err := ts.RunPeriodTransitionCheck(context.Background(), time.Date(2025, time.June, 1, 0, 5, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RunPeriodTransitionCheck: %v", err)
	}
	posts := env.gw.PostsTo(testChannel)
	if len(posts) != 1 || posts[0].Text != "HOWLO May Winners Announced!" {
		t.Fatalf("posts = %+v", posts)
	}
	if !strings.Contains(posts[0].Plain(), "June 2025 leaderboard is now active") {
		t.Fatalf("нет нового месяца: %s", posts[0].Plain())
	}
	if !announced(t, env, domain.AnnouncementMonthWinners, "2025-05") {
		t.Fatalf("флаг мая не записан")
	}

	// не первый день месяца - ничего
	if err := ts.RunPeriodTransitionCheck(context.Background(), time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RunPeriodTransitionCheck: %v", err)
	}
	if len(env.gw.PostsTo(testChannel)) != 1 {
		t.Fatalf("лишнее объявление")
	}
}

func TestMonthWinnersYearRollover(t *testing.T) {
	env := newTestEnv(t)
	env.record(t, "U1", 0, time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC))
	ts := newTransitions(env)

	if err := ts.RunPeriodTransitionCheck(context.Background(), time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RunPeriodTransitionCheck: %v", err)
	}
	if !announced(t, env, domain.AnnouncementMonthWinners, "2025-12") {
		t.Fatalf("флаг декабря не записан")
	}
	posts := env.gw.PostsTo(testChannel)
	if len(posts) != 1 || !strings.Contains(posts[0].Plain(), "January 2026") {
		t.Fatalf("posts = %+v", posts)
	}
}

func TestFailedPostIsRetried(t *testing.T) {
	env := newTestEnv(t)
	env.record(t, "U1", 0, inLaunch)
	ts := newTransitions(env)
	resetDay := resetStart.Add(time.Hour)

	env.gw.SetFail(errors.New("slack is down"))
	if err := ts.RunPeriodTransitionCheck(context.Background(), resetDay); err == nil {
		t.Fatalf("ошибка отправки должна возвращаться")
	}
	if announced(t, env, domain.AnnouncementLaunchWinners, period.LaunchKey) {
		t.Fatalf("при ошибке флаг не ставится")
	}

	env.gw.SetFail(nil)
	if err := ts.RunPeriodTransitionCheck(context.Background(), resetDay.Add(5*time.Minute)); err != nil {
		t.Fatalf("повтор: %v", err)
	}
	if !announced(t, env, domain.AnnouncementLaunchWinners, period.LaunchKey) {
		t.Fatalf("флаг не записан после успешного повтора")
	}
}

func TestPeriodWatcherStartStop(t *testing.T) {
	env := newTestEnv(t)
	w := NewPeriodWatcher(newTransitions(env), time.Hour)
	w.now = func() time.Time { return launchStart.Add(time.Hour) }

	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(env.gw.PostsTo(testChannel)) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("первая проверка не выполнена")
		}
		time.Sleep(10 * time.Millisecond)
	}
	w.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher не остановился")
	}
}
