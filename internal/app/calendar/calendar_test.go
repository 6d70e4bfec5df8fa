package calendar

import (
	"testing"
	"time"
)

func fixedClock(t *testing.T, ts string) *Clock {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	when, err := time.ParseInLocation("2006-01-02 15:04", ts, loc)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return NewAt(loc, func() time.Time { return when })
}

func TestToday(t *testing.T) {
	c := fixedClock(t, "2026-03-11 09:30")
	if got := c.Today(); got != "2026-03-11" {
		t.Errorf("Today() = %q, want 2026-03-11", got)
	}
}

func TestToday_CivilTimezoneNotUTC(t *testing.T) {
	// 2026-03-11 00:30 in Paris is still 2026-03-10 in UTC.
	// The day must roll at civil midnight, not UTC midnight.
	c := fixedClock(t, "2026-03-11 00:30")
	if got := c.Today(); got != "2026-03-11" {
		t.Errorf("Today() = %q, want 2026-03-11", got)
	}
}

func TestDaysInCurrentWeek(t *testing.T) {
	tests := []struct {
		name  string
		now   string
		first string
		last  string
	}{
		{"midweek", "2026-03-11 12:00", "2026-03-09", "2026-03-15"}, // Wednesday
		{"monday", "2026-03-09 08:00", "2026-03-09", "2026-03-15"},
		{"sunday", "2026-03-15 23:00", "2026-03-09", "2026-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixedClock(t, tt.now)
			days := c.DaysInCurrentWeek()
			if len(days) != 7 {
				t.Fatalf("got %d days, want 7", len(days))
			}
			if days[0] != tt.first {
				t.Errorf("days[0] = %q, want %q", days[0], tt.first)
			}
			if days[6] != tt.last {
				t.Errorf("days[6] = %q, want %q", days[6], tt.last)
			}
		})
	}
}

func TestDaysInPreviousWeek(t *testing.T) {
	c := fixedClock(t, "2026-03-11 12:00")
	days := c.DaysInPreviousWeek()
	if days[0] != "2026-03-02" || days[6] != "2026-03-08" {
		t.Errorf("previous week = [%s .. %s], want [2026-03-02 .. 2026-03-08]", days[0], days[6])
	}
}

func TestLastNDaysExcludingToday(t *testing.T) {
	c := fixedClock(t, "2026-03-11 12:00")
	days := c.LastNDaysExcludingToday(3)
	want := []string{"2026-03-08", "2026-03-09", "2026-03-10"}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, days[i], want[i])
		}
	}
}

func TestLastNDays_CrossesMonthBoundary(t *testing.T) {
	c := fixedClock(t, "2026-03-02 12:00")
	days := c.LastNDaysExcludingToday(3)
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01"}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, days[i], want[i])
		}
	}
}

func TestValidDay(t *testing.T) {
	tests := []struct {
		day  string
		want bool
	}{
		{"2026-03-11", true},
		{"2026-3-11", false},
		{"garbage", false},
		{"", false},
		{"2026-13-40", false},
	}
	for _, tt := range tests {
		if got := ValidDay(tt.day); got != tt.want {
			t.Errorf("ValidDay(%q) = %v, want %v", tt.day, got, tt.want)
		}
	}
}
