package training

import (
	"fmt"
	"time"
)

type Granularity int

const (
	GranularityYear Granularity = iota
	GranularityMonth
	GranularityWeek
)

func (g Granularity) String() string {
	switch g {
	case GranularityYear:
		return "year"
	case GranularityMonth:
		return "month"
	case GranularityWeek:
		return "week"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// BucketKey identifies a bucket. Month and Week are zero unless the
// granularity uses them; a zero Week is a real week (days before the
// first Monday of the year).
type BucketKey struct {
	Year  int
	Month int
	Week  int
}

func keyOf(g Granularity, t time.Time) BucketKey {
	switch g {
	case GranularityMonth:
		return BucketKey{Year: t.Year(), Month: int(t.Month())}
	case GranularityWeek:
		return BucketKey{Year: t.Year(), Week: WeekOfYear(t)}
	default:
		return BucketKey{Year: t.Year()}
	}
}

// after reports whether k sorts before other in most-recent-first order.
func (k BucketKey) after(other BucketKey) bool {
	if k.Year != other.Year {
		return k.Year > other.Year
	}
	if k.Month != other.Month {
		return k.Month > other.Month
	}
	return k.Week > other.Week
}

// WeekOfYear numbers weeks Monday-first, the strftime %W way: the days before
// the first Monday of the year are week 0, so the result is in [0, 53].
// This is not the ISO-8601 week.
func WeekOfYear(t time.Time) int {
	dayOfYear := t.YearDay() - 1
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return (dayOfYear + 7 - daysSinceMonday) / 7
}
