package training_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/2beens/rundash/internal/activities"
	"github.com/2beens/rundash/internal/training"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(id int64, start string, distance, vert float64) activities.Activity {
	startDate, err := time.Parse("2006-01-02 15:04", start)
	if err != nil {
		panic(err)
	}
	return activities.Activity{
		ID:                 id,
		Source:             activities.SourceStrava,
		Name:               "run",
		Type:               activities.TypeRun,
		StartDate:          startDate,
		Distance:           distance,
		TotalElevationGain: vert,
	}
}

func ofType(a activities.Activity, t string) activities.Activity {
	a.Type = t
	return a
}

func yearPtr(y int) *int {
	return &y
}

// testActivities spans two years, the %W boundary and a few non-runs.
func testActivities() []activities.Activity {
	return []activities.Activity{
		run(1, "2023-01-01 08:00", 5000, 20),
		run(2, "2023-01-02 08:00", 7000, 35),
		run(3, "2023-06-15 18:30", 12000, 240),
		run(4, "2023-12-31 10:00", 21097.5, 110),
		run(5, "2024-06-01 07:00", 5000, 40),
		run(6, "2024-06-01 19:00", 3000, 15),
		run(7, "2024-06-08 07:00", 10000, 80),
		run(8, "2024-12-30 07:00", 8000, 50),
		run(9, "2024-12-31 07:00", 6000, 30),
		ofType(run(10, "2024-06-01 12:00", 40000, 300), "Ride"),
		ofType(run(11, "2024-06-08 12:00", 2000, 0), "Swim"),
		ofType(run(12, "2023-03-03 12:00", 15000, 900), "Hike"),
	}
}

func TestBucketize_WeeklyScenario(t *testing.T) {
	acts := []activities.Activity{
		run(1, "2024-06-01 07:00", 5000, 0),
		run(2, "2024-06-01 18:00", 3000, 0),
		run(3, "2024-06-08 07:00", 10000, 0),
	}

	buckets := training.Bucketize(acts, training.GranularityWeek, yearPtr(2024))
	require.Len(t, buckets, 2)

	// most recent first
	week23 := buckets[0].WeekStats()
	assert.Equal(t, 2024, week23.Year)
	assert.Equal(t, 23, week23.Week)
	assert.Equal(t, 10000.0, week23.TotalDistance)
	assert.Equal(t, 1, week23.TotalActivities)
	assert.Equal(t, 1, week23.DaysRun)
	assert.Equal(t, 10000.0, week23.AvgDistancePerDay)

	week22 := buckets[1].WeekStats()
	assert.Equal(t, 22, week22.Week)
	assert.Equal(t, 8000.0, week22.TotalDistance)
	assert.Equal(t, 2, week22.TotalActivities)
	assert.Equal(t, 1, week22.DaysRun)
	assert.Equal(t, 8000.0, week22.AvgDistancePerDay)
}

func TestBucketize_EmptyYear(t *testing.T) {
	buckets := training.Bucketize(testActivities(), training.GranularityYear, yearPtr(2030))
	require.Len(t, buckets, 1)

	y := buckets[0].YearStats()
	assert.Equal(t, 2030, y.Year)
	assert.Equal(t, training.Summary{}, y.Summary)
	assert.Zero(t, y.AvgDistance)

	// only the year granularity gets a zero bucket
	assert.Empty(t, training.Bucketize(testActivities(), training.GranularityWeek, yearPtr(2030)))
	assert.Empty(t, training.Bucketize(testActivities(), training.GranularityMonth, yearPtr(2030)))
	assert.Empty(t, training.Bucketize(nil, training.GranularityYear, nil))
}

func TestBucketize_NonRunsExcluded(t *testing.T) {
	acts := testActivities()
	runCount := 0
	for _, a := range acts {
		if a.Type == activities.TypeRun {
			runCount++
		}
	}

	for _, g := range []training.Granularity{training.GranularityYear, training.GranularityMonth, training.GranularityWeek} {
		total := 0
		for _, b := range training.Bucketize(acts, g, nil) {
			total += b.TotalActivities
		}
		assert.Equal(t, runCount, total, g.String())
	}

	onlyRides := []activities.Activity{ofType(run(1, "2024-06-01 07:00", 40000, 0), "Ride")}
	assert.Empty(t, training.Bucketize(onlyRides, training.GranularityWeek, nil))
}

func TestBucketize_YearReconcilesWithWeeks(t *testing.T) {
	acts := testActivities()

	for _, year := range []int{2023, 2024} {
		years := training.Bucketize(acts, training.GranularityYear, yearPtr(year))
		require.Len(t, years, 1)

		var weekDistance, monthDistance float64
		for _, w := range training.Bucketize(acts, training.GranularityWeek, yearPtr(year)) {
			assert.Equal(t, year, w.Key.Year)
			weekDistance += w.TotalDistance
		}
		for _, m := range training.Bucketize(acts, training.GranularityMonth, yearPtr(year)) {
			monthDistance += m.TotalDistance
		}
		assert.InDelta(t, years[0].TotalDistance, weekDistance, 1e-9)
		assert.InDelta(t, years[0].TotalDistance, monthDistance, 1e-9)
	}
}

func TestBucketize_Invariants(t *testing.T) {
	acts := testActivities()

	for _, g := range []training.Granularity{training.GranularityYear, training.GranularityMonth, training.GranularityWeek} {
		buckets := training.Bucketize(acts, g, nil)
		require.NotEmpty(t, buckets)

		for i, b := range buckets {
			assert.LessOrEqual(t, b.DaysRun, b.TotalActivities)
			if b.DaysRun > 0 {
				assert.Equal(t, b.TotalDistance/float64(b.DaysRun), b.AvgDistancePerDay)
			} else {
				assert.Zero(t, b.AvgDistancePerDay)
			}
			if g == training.GranularityYear && b.TotalActivities > 0 {
				assert.Equal(t, b.TotalDistance/float64(b.TotalActivities), b.AvgDistance)
			} else if g != training.GranularityYear {
				assert.Zero(t, b.AvgDistance)
			}

			// strictly descending keys
			if i > 0 {
				prev := buckets[i-1].Key
				cur := b.Key
				descending := prev.Year > cur.Year ||
					(prev.Year == cur.Year && (prev.Month > cur.Month || prev.Week > cur.Week))
				assert.True(t, descending, "%v then %v", prev, cur)
			}
		}
	}
}

func TestBucketize_YearlyAllTime(t *testing.T) {
	buckets := training.Bucketize(testActivities(), training.GranularityYear, nil)
	require.Len(t, buckets, 2)

	y2024 := buckets[0].YearStats()
	assert.Equal(t, 2024, y2024.Year)
	assert.Equal(t, 32000.0, y2024.TotalDistance)
	assert.Equal(t, 5, y2024.TotalActivities)
	assert.Equal(t, 215.0, y2024.TotalVert)
	assert.Equal(t, 4, y2024.DaysRun)
	assert.Equal(t, 6400.0, y2024.AvgDistance)
	assert.Equal(t, 8000.0, y2024.AvgDistancePerDay)

	y2023 := buckets[1].YearStats()
	assert.Equal(t, 2023, y2023.Year)
	assert.Equal(t, 45097.5, y2023.TotalDistance)
	assert.Equal(t, 4, y2023.TotalActivities)
	assert.Equal(t, 4, y2023.DaysRun)
}

func TestBucketize_WeekBoundary(t *testing.T) {
	buckets := training.Bucketize(testActivities(), training.GranularityWeek, yearPtr(2024))
	require.NotEmpty(t, buckets)

	// 2024-12-30 and 2024-12-31 are ISO week 1 of 2025, but %W week 53 of 2024
	assert.Equal(t, training.BucketKey{Year: 2024, Week: 53}, buckets[0].Key)
	assert.Equal(t, 14000.0, buckets[0].TotalDistance)
	assert.Equal(t, 2, buckets[0].DaysRun)

	weeks2023 := training.Bucketize(testActivities(), training.GranularityWeek, yearPtr(2023))
	last := weeks2023[len(weeks2023)-1]
	// 2023-01-01 is a Sunday, before the first Monday
	assert.Equal(t, training.BucketKey{Year: 2023, Week: 0}, last.Key)
	assert.Equal(t, 5000.0, last.TotalDistance)
}

func TestBucketize_Deterministic(t *testing.T) {
	acts := testActivities()
	want, err := json.Marshal(training.Bucketize(acts, training.GranularityMonth, nil))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]activities.Activity(nil), acts...)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, err := json.Marshal(training.Bucketize(shuffled, training.GranularityMonth, nil))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}

	// input is not reordered in place
	assert.Equal(t, int64(1), acts[0].ID)
}

func TestAnalyzer_ComputeBucketedStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockactivitiesRepo(ctrl)
	analyzer := training.NewAnalyzer(repo)
	ctx := context.Background()

	repo.EXPECT().
		ListActivities(gomock.Any(), activities.YearFilter(activities.TypeRun, 2024)).
		Return(testActivities(), nil).
		Times(2)

	first, err := analyzer.ComputeBucketedStats(ctx, training.GranularityWeek, yearPtr(2024))
	require.NoError(t, err)
	second, err := analyzer.ComputeBucketedStats(ctx, training.GranularityWeek, yearPtr(2024))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the store may hand back other types or years; the engine filters again
	for _, b := range first {
		assert.Equal(t, 2024, b.Key.Year)
	}
}

func TestAnalyzer_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockactivitiesRepo(ctrl)
	analyzer := training.NewAnalyzer(repo)
	storeErr := errors.New("connection reset")

	repo.EXPECT().
		ListActivities(gomock.Any(), activities.ActivityFilter{Type: activities.TypeRun}).
		Return(nil, storeErr).
		Times(2)

	buckets, err := analyzer.ComputeBucketedStats(context.Background(), training.GranularityYear, nil)
	assert.Nil(t, buckets)
	assert.ErrorIs(t, err, training.ErrAggregation)
	assert.ErrorIs(t, err, storeErr)

	_, err = analyzer.TrainingStats(context.Background(), nil)
	assert.ErrorIs(t, err, training.ErrAggregation)
}

func TestAnalyzer_TrainingStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockactivitiesRepo(ctrl)
	analyzer := training.NewAnalyzer(repo)
	ctx := context.Background()

	repo.EXPECT().
		ListActivities(gomock.Any(), activities.ActivityFilter{Type: activities.TypeRun}).
		Return(testActivities(), nil)
	all, err := analyzer.TrainingStats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, all.TotalActivities)
	assert.Equal(t, 77097.5, all.TotalDistance)
	assert.Equal(t, 8, all.DaysRun)
	assert.Equal(t, all.DaysRun, all.TotalDays)
	assert.InDelta(t, 77097.5/9, all.AvgDistance, 1e-9)
	assert.InDelta(t, 77097.5/8, all.AvgDistancePerDay, 1e-9)

	repo.EXPECT().
		ListActivities(gomock.Any(), activities.YearFilter(activities.TypeRun, 2030)).
		Return(nil, nil)
	empty, err := analyzer.TrainingStats(ctx, yearPtr(2030))
	require.NoError(t, err)
	assert.Equal(t, training.OverallStats{}, empty)
}

func TestAnalyzer_Views(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockactivitiesRepo(ctrl)
	analyzer := training.NewAnalyzer(repo)
	ctx := context.Background()

	repo.EXPECT().ListActivities(gomock.Any(), gomock.Any()).Return(testActivities(), nil).AnyTimes()

	yearly, err := analyzer.YearlyStats(ctx)
	require.NoError(t, err)
	require.Len(t, yearly, 2)
	assert.Equal(t, 2024, yearly[0].Year)

	monthly, err := analyzer.MonthlyStats(ctx, yearPtr(2023))
	require.NoError(t, err)
	require.Len(t, monthly, 3)
	assert.Equal(t, 12, monthly[0].Month)
	assert.Equal(t, 6, monthly[1].Month)
	assert.Equal(t, 1, monthly[2].Month)
	assert.Equal(t, 12000.0, monthly[2].TotalDistance)
	assert.Equal(t, 2, monthly[2].DaysRun)

	weekly, err := analyzer.WeeklyStats(ctx, yearPtr(2024))
	require.NoError(t, err)
	require.Len(t, weekly, 3)
	assert.Equal(t, []int{53, 23, 22}, []int{weekly[0].Week, weekly[1].Week, weekly[2].Week})
}
