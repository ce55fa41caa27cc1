package training

import (
	"encoding/json"
	"fmt"
)

// Summary holds the numbers every bucket carries. Fields are never omitted.
type Summary struct {
	TotalDistance     float64 `json:"total_distance"`
	TotalActivities   int     `json:"total_activities"`
	TotalVert         float64 `json:"total_vert"`
	DaysRun           int     `json:"days_run"`
	AvgDistancePerDay float64 `json:"avg_distance_per_day"`
}

type YearStats struct {
	Year int `json:"year"`
	Summary
	AvgDistance float64 `json:"avg_distance"`
}

type MonthStats struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Summary
}

type WeekStats struct {
	Year int `json:"year"`
	Week int `json:"week"`
	Summary
}

// OverallStats is the all-time or single-year total. TotalDays repeats
// DaysRun under the name older dashboard pages read.
type OverallStats struct {
	Summary
	AvgDistance float64 `json:"avg_distance"`
	TotalDays   int     `json:"total_days"`
}

// BucketSummary is one aggregated bucket. Granularity tells which of the
// key fields are meaningful; AvgDistance is only set for years.
type BucketSummary struct {
	Granularity Granularity
	Key         BucketKey
	Summary
	AvgDistance float64
}

func (b BucketSummary) YearStats() YearStats {
	return YearStats{Year: b.Key.Year, Summary: b.Summary, AvgDistance: b.AvgDistance}
}

func (b BucketSummary) MonthStats() MonthStats {
	return MonthStats{Year: b.Key.Year, Month: b.Key.Month, Summary: b.Summary}
}

func (b BucketSummary) WeekStats() WeekStats {
	return WeekStats{Year: b.Key.Year, Week: b.Key.Week, Summary: b.Summary}
}

func (b BucketSummary) MarshalJSON() ([]byte, error) {
	switch b.Granularity {
	case GranularityYear:
		return json.Marshal(b.YearStats())
	case GranularityMonth:
		return json.Marshal(b.MonthStats())
	case GranularityWeek:
		return json.Marshal(b.WeekStats())
	default:
		return nil, fmt.Errorf("marshal bucket: unknown %s", b.Granularity)
	}
}
