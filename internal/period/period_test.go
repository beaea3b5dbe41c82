package period

import (
	"testing"
	"time"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	launch := time.Date(2025, time.March, 24, 0, 0, 0, 0, time.UTC)
	reset := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewClassifier(launch, reset, time.UTC)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestNewClassifierRejectsInvertedBounds(t *testing.T) {
	a := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewClassifier(a, a, nil); err == nil {
		t.Fatalf("ожидалась ошибка для равных границ")
	}
}

func TestNewClassifierRequiresMonthStartReset(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	launch := time.Date(2025, time.March, 24, 0, 0, 0, 0, la)

	tests := []struct {
		name  string
		reset time.Time
		ok    bool
	}{
		{"first of month", time.Date(2025, time.May, 1, 0, 0, 0, 0, la), true},
		{"same instant in utc", time.Date(2025, time.May, 1, 7, 0, 0, 0, time.UTC), true},
		{"mid month", time.Date(2025, time.May, 15, 0, 0, 0, 0, la), false},
		{"first of month but not midnight", time.Date(2025, time.May, 1, 9, 0, 0, 0, la), false},
		{"utc midnight is not local midnight", time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(launch, tt.reset, la)
			if tt.ok && err != nil {
				t.Fatalf("NewClassifier: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("ожидалась ошибка для сброса %s", tt.reset)
			}
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	c := newTestClassifier(t)

	before := c.Classify(c.LaunchStart.Add(-time.Millisecond))
	if before.Regime != RegimePreLaunch {
		t.Fatalf("за 1мс до старта ожидался pre_launch, получено %s", before.Regime)
	}

	at := c.Classify(c.LaunchStart)
	if at.Regime != RegimeLaunch || at.Key != LaunchKey {
		t.Fatalf("в момент старта ожидался launch, получено %+v", at)
	}

	lastLaunch := c.Classify(c.FirstResetStart.Add(-time.Millisecond))
	if lastLaunch.Regime != RegimeLaunch {
		t.Fatalf("за 1мс до сброса ожидался launch, получено %s", lastLaunch.Regime)
	}

	reset := c.Classify(c.FirstResetStart)
	if reset.Regime != RegimeMonthly || reset.Month != 4 || reset.Year != 2025 || reset.Key != "2025-05" {
		t.Fatalf("в момент сброса ожидался monthly May 2025, получено %+v", reset)
	}
}

func TestLaunchFilterSpansTwoMonths(t *testing.T) {
	c := newTestClassifier(t)
	f := c.Filter(time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC))
	if f.Kind != FilterRange || f.Key != LaunchKey {
		t.Fatalf("ожидался диапазонный фильтр, получено %+v", f)
	}

	march := time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC)
	if !f.Matches(march, 2, 2025) {
		t.Fatalf("конец марта должен входить в стартовый период")
	}
	early := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	if f.Matches(early, 2, 2025) {
		t.Fatalf("запись до старта не должна входить в стартовый период")
	}
	if f.Matches(c.FirstResetStart, 4, 2025) {
		t.Fatalf("граница сброса не входит в стартовый период")
	}
}

func TestMonthlyFilter(t *testing.T) {
	c := newTestClassifier(t)
	f := c.Filter(time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC))
	if f.Kind != FilterMonth || f.Month != 6 || f.Year != 2025 {
		t.Fatalf("ожидался фильтр July 2025, получено %+v", f)
	}
	if !f.Matches(time.Time{}, 6, 2025) || f.Matches(time.Time{}, 6, 2024) {
		t.Fatalf("фильтр месяца работает по month/year")
	}

	none := c.Filter(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	if none.Kind != FilterNone || none.Matches(time.Now(), 0, 2024) {
		t.Fatalf("до старта ничего не должно попадать в рейтинг")
	}
}

func TestPreviousNext(t *testing.T) {
	if m, y := Previous(0, 2026); m != 11 || y != 2025 {
		t.Fatalf("Previous(Jan 2026) = %d %d", m, y)
	}
	if m, y := Next(11, 2025); m != 0 || y != 2026 {
		t.Fatalf("Next(Dec 2025) = %d %d", m, y)
	}
}

func TestSameDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	c, err := NewClassifier(
		time.Date(2025, time.March, 24, 0, 0, 0, 0, loc),
		time.Date(2025, time.May, 1, 0, 0, 0, 0, loc),
		loc,
	)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	// 03:00 UTC 24 марта - ещё 23 марта по PDT
	utc := time.Date(2025, time.March, 24, 3, 0, 0, 0, time.UTC)
	if c.SameDay(utc, c.LaunchStart) {
		t.Fatalf("день должен сравниваться в локальном поясе")
	}
	if c.Classify(utc).Regime != RegimePreLaunch {
		t.Fatalf("ожидался pre_launch")
	}
}

func TestLabel(t *testing.T) {
	if got := (Period{Regime: RegimeMonthly, Month: 4, Year: 2025}).Label(); got != "May 2025" {
		t.Fatalf("получено %q", got)
	}
}

func TestLaunchWindowLabel(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("нет tzdata: %v", err)
	}
	c, err := NewClassifier(
		time.Date(2025, time.March, 24, 0, 0, 0, 0, loc),
		time.Date(2025, time.May, 1, 0, 0, 0, 0, loc),
		loc,
	)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	if got := c.LaunchWindowLabel(); got != "March 24 to April 30, 2025" {
		t.Fatalf("LaunchWindowLabel = %q", got)
	}
}
