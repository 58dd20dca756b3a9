// Package aggregate folds flushed activity durations into the overlapping
// time-bucketed totals kept in the remote store.
package aggregate

import (
	"time"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
)

const dateLayout = "2006-01-02"

// DailyKey buckets t by calendar date.
func DailyKey(t time.Time) store.PeriodKey {
	return store.PeriodKey{
		Granularity: store.Daily,
		Date:        t.Format(dateLayout),
	}
}

// WeeklyKey buckets t by ISO week: the week belongs to the year of its
// Thursday, weeks counted from that year's first Thursday.
func WeeklyKey(t time.Time) store.PeriodKey {
	year, week := t.ISOWeek()
	return store.PeriodKey{
		Granularity: store.Weekly,
		Year:        year,
		Week:        week,
	}
}

func MonthlyKey(t time.Time) store.PeriodKey {
	return store.PeriodKey{
		Granularity: store.Monthly,
		Year:        t.Year(),
		Month:       int(t.Month()),
	}
}

func YearlyKey(t time.Time) store.PeriodKey {
	return store.PeriodKey{
		Granularity: store.Yearly,
		Year:        t.Year(),
	}
}

// Keys returns every bucket a delta at time t applies to.
func Keys(t time.Time) []store.PeriodKey {
	return []store.PeriodKey{DailyKey(t), WeeklyKey(t), MonthlyKey(t), YearlyKey(t)}
}

// WeekBounds returns the Monday and Sunday dates of t's ISO week, used as
// weekly bucket metadata.
func WeekBounds(t time.Time) (start, end string) {
	// time.Weekday counts Sunday as 0; shift so Monday is day 0.
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(dateLayout), sunday.Format(dateLayout)
}

// PeriodWindow returns the half-open [start, end) wall-clock range covered by
// key, in t's location. Used when aggregate rows are unavailable and totals
// must be recomputed from raw tracking events.
func PeriodWindow(key store.PeriodKey, t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	switch key.Granularity {
	case store.Weekly:
		offset := (int(t.Weekday()) + 6) % 7
		monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 7)
	case store.Monthly:
		start := time.Date(key.Year, time.Month(key.Month), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case store.Yearly:
		start := time.Date(key.Year, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		day, err := time.ParseInLocation(dateLayout, key.Date, loc)
		if err != nil {
			day = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		}
		return day, day.AddDate(0, 0, 1)
	}
}
