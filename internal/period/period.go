package period

import (
	"fmt"
	"time"
)

type Regime string

const (
	RegimePreLaunch Regime = "pre_launch"
	RegimeLaunch    Regime = "launch"
	RegimeMonthly   Regime = "monthly"
)

// ключ расширенного стартового периода
const LaunchKey = "launch"

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Period - эпоха начисления очков. Month 0-11 как в записях
type Period struct {
	Regime Regime `json:"regime"`
	Key    string `json:"key"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
}

// человекочитаемое название периода
func (p Period) Label() string {
	switch p.Regime {
	case RegimeLaunch:
		return "Launch Period"
	case RegimeMonthly:
		return MonthName(p.Month) + " " + fmt.Sprint(p.Year)
	}
	return "Pre-launch"
}

func MonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return monthNames[month]
}

// MonthKey - ключ обычного месячного периода
func MonthKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month+1)
}

type FilterKind int

const (
	// ни одна запись не попадает в рейтинг
	FilterNone FilterKind = iota
	// created_at в [Start, End)
	FilterRange
	// month/year равны
	FilterMonth
)

// Filter - форма запроса "записи текущего периода" для хранилища.
// Один источник правды для всех агрегаций.
type Filter struct {
	Kind  FilterKind
	Key   string
	Start time.Time
	End   time.Time
	Month int
	Year  int
}

// проверяет попадание записи в фильтр
func (f Filter) Matches(createdAt time.Time, month, year int) bool {
	switch f.Kind {
	case FilterRange:
		return !createdAt.Before(f.Start) && createdAt.Before(f.End)
	case FilterMonth:
		return month == f.Month && year == f.Year
	}
	return false
}

// Classifier делит время на три режима по двум настроенным моментам
type Classifier struct {
	LaunchStart     time.Time
	FirstResetStart time.Time
	Location        *time.Location
}

func NewClassifier(launchStart, firstResetStart time.Time, loc *time.Location) (*Classifier, error) {
	if !launchStart.Before(firstResetStart) {
		return nil, fmt.Errorf("launch start %s must be before first reset %s", launchStart, firstResetStart)
	}
	if loc == nil {
		loc = time.UTC
	}
	// месячные периоды сравнивают month/year, поэтому стартовый период должен
	// закончиться ровно на границе месяца
	if !IsMonthStart(firstResetStart, loc) {
		return nil, fmt.Errorf("first reset %s must be midnight on the 1st of a month in %s", firstResetStart, loc)
	}
	return &Classifier{
		LaunchStart:     launchStart,
		FirstResetStart: firstResetStart,
		Location:        loc,
	}, nil
}

func (c *Classifier) local(t time.Time) time.Time {
	return t.In(c.Location)
}

// Classify - чистая функция от времени
func (c *Classifier) Classify(now time.Time) Period {
	local := c.local(now)
	month, year := int(local.Month())-1, local.Year()

	switch {
	case now.Before(c.LaunchStart):
		return Period{Regime: RegimePreLaunch, Key: MonthKey(month, year), Month: month, Year: year}
	case now.Before(c.FirstResetStart):
		return Period{Regime: RegimeLaunch, Key: LaunchKey, Month: month, Year: year}
	default:
		return Period{Regime: RegimeMonthly, Key: MonthKey(month, year), Month: month, Year: year}
	}
}

// Filter возвращает фильтр записей текущего периода
func (c *Classifier) Filter(now time.Time) Filter {
	p := c.Classify(now)
	switch p.Regime {
	case RegimeLaunch:
		return c.LaunchFilter()
	case RegimeMonthly:
		return MonthFilter(p.Month, p.Year)
	}
	return Filter{Kind: FilterNone, Key: p.Key}
}

// стартовый период захватывает части двух календарных месяцев, поэтому только диапазон дат
func (c *Classifier) LaunchFilter() Filter {
	return Filter{Kind: FilterRange, Key: LaunchKey, Start: c.LaunchStart, End: c.FirstResetStart}
}

func MonthFilter(month, year int) Filter {
	return Filter{Kind: FilterMonth, Key: MonthKey(month, year), Month: month, Year: year}
}

// предыдущий календарный месяц
func Previous(month, year int) (int, int) {
	if month == 0 {
		return 11, year - 1
	}
	return month - 1, year
}

// следующий календарный месяц
func Next(month, year int) (int, int) {
	if month == 11 {
		return 0, year + 1
	}
	return month + 1, year
}

// SameDay сравнивает календарные дни в часовом поясе классификатора
func (c *Classifier) SameDay(a, b time.Time) bool {
	ay, am, ad := c.local(a).Date()
	by, bm, bd := c.local(b).Date()
	return ay == by && am == bm && ad == bd
}

// IsFirstOfMonth - первый день месяца в часовом поясе классификатора
func (c *Classifier) IsFirstOfMonth(t time.Time) bool {
	return c.local(t).Day() == 1
}

// IsMonthStart - t ровно полночь 1-го числа в поясе loc
func IsMonthStart(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	return local.Equal(time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc))
}

// MonthStart - начало месяца в часовом поясе классификатора
func (c *Classifier) MonthStart(month, year int) time.Time {
	return time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, c.Location)
}

// LaunchWindowLabel - "March 24 to April 30, 2025", последний день включительно
func (c *Classifier) LaunchWindowLabel() string {
	start := c.local(c.LaunchStart)
	end := c.local(c.FirstResetStart).AddDate(0, 0, -1)
	if start.Year() != end.Year() {
		return start.Format("January 2, 2006") + " to " + end.Format("January 2, 2006")
	}
	return start.Format("January 2") + " to " + end.Format("January 2, 2006")
}
