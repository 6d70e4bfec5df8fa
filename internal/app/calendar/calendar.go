// Package calendar resolves "today" and day ranges in one fixed civil
// timezone. Every limit, mission period, and allowance rollover in the
// economy is anchored to these days — never to UTC midnight, and never to
// whatever timezone the host happens to run in.
package calendar

import (
	"time"
)

// DayFormat is the canonical day-string layout, used as storage key and
// query boundary throughout the system.
const DayFormat = "2006-01-02"

// Clock computes calendar days in a fixed location. The zero value is not
// usable; construct with New.
type Clock struct {
	loc *time.Location
	now func() time.Time // overridable for tests
}

// New creates a Clock pinned to the named timezone.
func New(tzName string) (*Clock, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewAt creates a Clock with a fixed notion of "now". Test hook.
func NewAt(loc *time.Location, now func() time.Time) *Clock {
	return &Clock{loc: loc, now: now}
}

// Today returns the current day as YYYY-MM-DD in the clock's timezone.
func (c *Clock) Today() string {
	return c.now().In(c.loc).Format(DayFormat)
}

// DaysInCurrentWeek returns the 7 days of the current week in order,
// Monday first.
func (c *Clock) DaysInCurrentWeek() []string {
	t := c.now().In(c.loc)
	// time.Weekday has Sunday = 0; shift so Monday = 0
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	days := make([]string, 7)
	for i := 0; i < 7; i++ {
		days[i] = monday.AddDate(0, 0, i).Format(DayFormat)
	}
	return days
}

// DaysInPreviousWeek returns the 7 days of the week before the current one.
func (c *Clock) DaysInPreviousWeek() []string {
	t := c.now().In(c.loc)
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset-7)
	days := make([]string, 7)
	for i := 0; i < 7; i++ {
		days[i] = monday.AddDate(0, 0, i).Format(DayFormat)
	}
	return days
}

// LastNDaysExcludingToday returns the n days before today, oldest first.
func (c *Clock) LastNDaysExcludingToday(n int) []string {
	t := c.now().In(c.loc)
	days := make([]string, 0, n)
	for i := n; i >= 1; i-- {
		days = append(days, t.AddDate(0, 0, -i).Format(DayFormat))
	}
	return days
}

// ValidDay reports whether s is a well-formed YYYY-MM-DD day string.
func ValidDay(s string) bool {
	_, err := time.Parse(DayFormat, s)
	return err == nil
}
