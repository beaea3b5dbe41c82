package service

import (
	"context"
	"testing"
	"time"

	"howlo/internal/period"
)

func TestLeaderTrackerSeedsThenDetectsChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.record(t, "U1", 0, inLaunch)
	change, err := env.tracker.Check(ctx, inLaunch)
	if err != nil || change != nil {
		t.Fatalf("первый вызов только запоминает: %+v, %v", change, err)
	}

	env.record(t, "U1", 1, inLaunch.Add(time.Minute))
	if change, _ := env.tracker.Check(ctx, inLaunch.Add(time.Minute)); change != nil {
		t.Fatalf("лидер не менялся: %+v", change)
	}

	env.recordMany(t, "U2", []int{5, 6, 7}, inLaunch.Add(2*time.Minute))
	change, err = env.tracker.Check(ctx, inLaunch.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if change == nil || change.NewLeader.UserID != "U2" || change.PreviousLeader.UserID != "U1" {
		t.Fatalf("ожидалась смена U1 -> U2: %+v", change)
	}
	if change.Period.Key != period.LaunchKey {
		t.Fatalf("Period = %+v", change.Period)
	}

	// та же смена не объявляется дважды
	if change, _ := env.tracker.Check(ctx, inLaunch.Add(2*time.Hour)); change != nil {
		t.Fatalf("повторное срабатывание: %+v", change)
	}
	if snap := env.tracker.Snapshot(); len(snap) != 2 || snap[0].UserID != "U2" {
		t.Fatalf("Snapshot = %+v", snap)
	}
}

func TestLeaderTrackerResetsOnPeriodRollover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.recordMany(t, "U1", []int{0, 1}, inLaunch)
	if _, err := env.tracker.Check(ctx, inLaunch); err != nil {
		t.Fatalf("Check: %v", err)
	}

	may := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	env.record(t, "U2", 0, may)
	change, err := env.tracker.Check(ctx, may)
	if err != nil || change != nil {
		t.Fatalf("новый период только запоминает: %+v, %v", change, err)
	}

	env.recordMany(t, "U3", []int{0, 1}, may.Add(time.Minute))
	change, _ = env.tracker.Check(ctx, may.Add(time.Hour))
	if change == nil || change.NewLeader.UserID != "U3" || change.PreviousLeader.UserID != "U2" {
		t.Fatalf("ожидалась смена U2 -> U3 в мае: %+v", change)
	}
}

func TestLeaderTrackerIgnoresPreLaunch(t *testing.T) {
	env := newTestEnv(t)
	before := launchStart.Add(-time.Hour)
	env.record(t, "U1", 0, before)
	if change, err := env.tracker.Check(context.Background(), before); change != nil || err != nil {
		t.Fatalf("до старта трекер молчит: %+v, %v", change, err)
	}
	if env.tracker.Snapshot() != nil {
		t.Fatalf("до старта состояние не запоминается")
	}
}

func TestLeaderTrackerFirstEntrantIsNotAChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.tracker.Check(ctx, inLaunch); err != nil {
		t.Fatalf("Check: %v", err)
	}
	env.record(t, "U1", 0, inLaunch)
	if change, _ := env.tracker.Check(ctx, inLaunch); change != nil {
		t.Fatalf("пустой рейтинг -> первый участник не смена лидера: %+v", change)
	}
}
