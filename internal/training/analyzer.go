package training

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/2beens/rundash/internal/activities"
	"github.com/2beens/rundash/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=training_mocks_test.go -package=training_test

var ErrAggregation = errors.New("aggregation failed")

type activitiesRepo interface {
	ListActivities(ctx context.Context, filter activities.ActivityFilter) ([]activities.Activity, error)
}

// Analyzer turns the stored runs into per-bucket training summaries.
// It keeps no state between calls.
type Analyzer struct {
	repo activitiesRepo
}

func NewAnalyzer(repo activitiesRepo) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

// ComputeBucketedStats returns one summary per bucket of the given granularity,
// most recent first. Only runs count. With a year filter only that calendar year
// is considered, and a year bucket with no runs is still returned, zero-valued.
func (a *Analyzer) ComputeBucketedStats(
	ctx context.Context,
	granularity Granularity,
	yearFilter *int,
) (_ []BucketSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.training.bucketedStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("granularity", granularity.String()))

	runs, err := a.listRuns(ctx, yearFilter)
	if err != nil {
		return nil, err
	}

	buckets := Bucketize(runs, granularity, yearFilter)
	span.SetAttributes(attribute.Int("buckets", len(buckets)))
	return buckets, nil
}

// TrainingStats sums all runs, or the runs of one year, into a single summary.
func (a *Analyzer) TrainingStats(ctx context.Context, year *int) (_ OverallStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.training.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	runs, err := a.listRuns(ctx, year)
	if err != nil {
		return OverallStats{}, err
	}

	acc := newAccumulator()
	for _, run := range filterRuns(runs, year) {
		acc.add(run)
	}
	summary, avgDistance := acc.result()

	return OverallStats{
		Summary:     summary,
		AvgDistance: avgDistance,
		TotalDays:   summary.DaysRun,
	}, nil
}

func (a *Analyzer) YearlyStats(ctx context.Context) ([]YearStats, error) {
	buckets, err := a.ComputeBucketedStats(ctx, GranularityYear, nil)
	if err != nil {
		return nil, err
	}
	stats := make([]YearStats, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b.YearStats())
	}
	return stats, nil
}

func (a *Analyzer) MonthlyStats(ctx context.Context, year *int) ([]MonthStats, error) {
	buckets, err := a.ComputeBucketedStats(ctx, GranularityMonth, year)
	if err != nil {
		return nil, err
	}
	stats := make([]MonthStats, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b.MonthStats())
	}
	return stats, nil
}

func (a *Analyzer) WeeklyStats(ctx context.Context, year *int) ([]WeekStats, error) {
	buckets, err := a.ComputeBucketedStats(ctx, GranularityWeek, year)
	if err != nil {
		return nil, err
	}
	stats := make([]WeekStats, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b.WeekStats())
	}
	return stats, nil
}

func (a *Analyzer) listRuns(ctx context.Context, year *int) ([]activities.Activity, error) {
	filter := activities.ActivityFilter{Type: activities.TypeRun}
	if year != nil {
		filter = activities.YearFilter(activities.TypeRun, *year)
	}

	runs, err := a.repo.ListActivities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", ErrAggregation, err)
	}
	return runs, nil
}

// Bucketize groups the runs into buckets. It does not rely on the input order:
// runs are summed in (start date, id) order so float sums are reproducible.
func Bucketize(all []activities.Activity, granularity Granularity, yearFilter *int) []BucketSummary {
	runs := filterRuns(all, yearFilter)

	accumulators := make(map[BucketKey]*accumulator)
	for _, run := range runs {
		key := keyOf(granularity, run.StartDate)
		acc, ok := accumulators[key]
		if !ok {
			acc = newAccumulator()
			accumulators[key] = acc
		}
		acc.add(run)
	}

	if granularity == GranularityYear && yearFilter != nil && len(accumulators) == 0 {
		accumulators[BucketKey{Year: *yearFilter}] = newAccumulator()
	}

	buckets := make([]BucketSummary, 0, len(accumulators))
	for key, acc := range accumulators {
		summary, avgDistance := acc.result()
		bucket := BucketSummary{
			Granularity: granularity,
			Key:         key,
			Summary:     summary,
		}
		if granularity == GranularityYear {
			bucket.AvgDistance = avgDistance
		}
		buckets = append(buckets, bucket)
	}

	slices.SortFunc(buckets, func(x, y BucketSummary) int {
		switch {
		case x.Key == y.Key:
			return 0
		case x.Key.after(y.Key):
			return -1
		default:
			return 1
		}
	})

	return buckets
}

// filterRuns keeps the runs of the filter year and returns them sorted by
// start date, then id. The input slice is left untouched.
func filterRuns(all []activities.Activity, yearFilter *int) []activities.Activity {
	runs := make([]activities.Activity, 0, len(all))
	for _, a := range all {
		if a.Type != activities.TypeRun {
			continue
		}
		if yearFilter != nil && a.StartDate.Year() != *yearFilter {
			continue
		}
		runs = append(runs, a)
	}

	slices.SortStableFunc(runs, func(x, y activities.Activity) int {
		if c := x.StartDate.Compare(y.StartDate); c != 0 {
			return c
		}
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		default:
			return 0
		}
	})

	return runs
}

type accumulator struct {
	distance float64
	vert     float64
	count    int
	days     map[time.Time]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		days: make(map[time.Time]struct{}),
	}
}

func (acc *accumulator) add(run activities.Activity) {
	acc.distance += run.Distance
	acc.vert += run.TotalElevationGain
	acc.count++
	acc.days[run.StartDay()] = struct{}{}
}

// result returns the summary and the mean distance per activity.
// Empty accumulators give zeros, never NaN.
func (acc *accumulator) result() (Summary, float64) {
	summary := Summary{
		TotalDistance:   acc.distance,
		TotalActivities: acc.count,
		TotalVert:       acc.vert,
		DaysRun:         len(acc.days),
	}
	if summary.DaysRun > 0 {
		summary.AvgDistancePerDay = acc.distance / float64(summary.DaysRun)
	}

	var avgDistance float64
	if acc.count > 0 {
		avgDistance = acc.distance / float64(acc.count)
	}
	return summary, avgDistance
}
