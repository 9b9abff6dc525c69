package tax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPeriodStart = errors.New("invalid period start")
	ErrInvalidPeriodEnd   = errors.New("invalid period end")
	ErrInvalidPeriod      = errors.New("invalid period")
)

const dayLayout = "2006-01-02"

// Period is a half-open range of calendar days [Start, End), each held at
// UTC midnight to match DATE columns.
type Period struct {
	Start time.Time
	End   time.Time
}

// Label renders the period's starting month as YYYY-MM.
func (p Period) Label() string {
	return p.Start.Format("2006-01")
}

// ParseDay reads YYYY-MM-DD or an RFC 3339 timestamp and keeps the calendar
// day as written.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ResolvePeriod turns optional caller bounds into a Period. An empty start
// means the first day of the current month as seen in loc; an empty end means
// the first day of the month after start.
func ResolvePeriod(startRaw, endRaw string, now time.Time, loc *time.Location) (Period, error) {
	var start time.Time
	if strings.TrimSpace(startRaw) == "" {
		local := now.In(loc)
		start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := ParseDay(startRaw)
		if err != nil {
			return Period{}, ErrInvalidPeriodStart
		}
		start = parsed
	}

	var end time.Time
	if strings.TrimSpace(endRaw) == "" {
		end = time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := ParseDay(endRaw)
		if err != nil {
			return Period{}, ErrInvalidPeriodEnd
		}
		end = parsed
	}

	if !end.After(start) {
		return Period{}, ErrInvalidPeriodEnd
	}
	return Period{Start: start, End: end}, nil
}

// ParseMonth reads "YYYY-MM" into the calendar month it names.
func ParseMonth(s string) (Period, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Period{}, ErrInvalidPeriod
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || len(year) != 4 {
		return Period{}, ErrInvalidPeriod
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return Period{}, ErrInvalidPeriod
	}

	start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}, nil
}
