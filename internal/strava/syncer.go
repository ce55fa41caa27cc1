package strava

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/rundash/internal/activities"
	"github.com/2beens/rundash/internal/telemetry/metrics"
	"github.com/2beens/rundash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=syncer_mocks_test.go -package=strava_test

const metricsSource = "strava"

type activitiesRepo interface {
	UpsertActivity(ctx context.Context, a activities.Activity) error
	UpsertRace(ctx context.Context, activityID int64, fields activities.RaceFields) (*activities.Race, error)
}

type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type activitiesLister interface {
	ListActivities(ctx context.Context, accessToken string, page, perPage int) ([]SummaryActivity, error)
}

// SyncResult counts what a sync run did. RowErrors holds the per-activity
// failures; they never abort the batch.
type SyncResult struct {
	Fetched   int   `json:"fetched"`
	Upserted  int   `json:"upserted"`
	Races     int   `json:"races"`
	Failed    int   `json:"failed"`
	RowErrors error `json:"-"`
}

type SyncerParams struct {
	Repo             activitiesRepo
	Tokens           tokenProvider
	Lister           activitiesLister
	PerPage          int
	MaxPages         int
	RaceWorkoutTypes []int
	MetricsManager   *metrics.Manager
}

type Syncer struct {
	repo             activitiesRepo
	tokens           tokenProvider
	lister           activitiesLister
	perPage          int
	maxPages         int
	raceWorkoutTypes []int
	metrics          *metrics.Manager
}

func NewSyncer(params SyncerParams) *Syncer {
	return &Syncer{
		repo:             params.Repo,
		tokens:           params.Tokens,
		lister:           params.Lister,
		perPage:          params.PerPage,
		maxPages:         params.MaxPages,
		raceWorkoutTypes: params.RaceWorkoutTypes,
		metrics:          params.MetricsManager,
	}
}

// Sync pulls the most recent activities, at most maxPages pages of perPage,
// and upserts them. A missing token gives ErrNotAuthenticated; a failing
// page stops the run, a failing activity does not.
func (s *Syncer) Sync(ctx context.Context) (_ SyncResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.syncer.sync")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start := time.Now()
	defer func() {
		s.metrics.HistogramSyncDuration.WithLabelValues(metricsSource).Observe(time.Since(start).Seconds())
	}()

	accessToken, err := s.tokens.Token(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	var result SyncResult
	for page := 1; page <= s.maxPages; page++ {
		summaries, err := s.lister.ListActivities(ctx, accessToken, page, s.perPage)
		if err != nil {
			return result, fmt.Errorf("list activities, page %d: %w", page, err)
		}
		result.Fetched += len(summaries)

		for _, summary := range summaries {
			s.syncOne(ctx, summary, &result)
		}

		if len(summaries) < s.perPage {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("fetched", result.Fetched),
		attribute.Int("upserted", result.Upserted),
		attribute.Int("failed", result.Failed),
	)
	log.Infof("strava sync done: fetched %d, upserted %d, races %d, failed %d",
		result.Fetched, result.Upserted, result.Races, result.Failed)

	return result, nil
}

func (s *Syncer) syncOne(ctx context.Context, summary SummaryActivity, result *SyncResult) {
	activity, isRace := summary.ToActivity(s.raceWorkoutTypes)

	if err := s.repo.UpsertActivity(ctx, activity); err != nil {
		s.rowFailed(result, fmt.Errorf("upsert activity %d: %w", activity.ID, err))
		return
	}
	result.Upserted++
	s.metrics.CounterSyncedActivities.WithLabelValues(metricsSource).Inc()

	if !isRace {
		return
	}
	if _, err := s.repo.UpsertRace(ctx, activity.ID, activities.RaceFields{}); err != nil {
		s.rowFailed(result, fmt.Errorf("upsert race for activity %d: %w", activity.ID, err))
		return
	}
	result.Races++
}

func (s *Syncer) rowFailed(result *SyncResult, err error) {
	log.Errorf("strava sync: %s", err)
	result.Failed++
	result.RowErrors = multierr.Append(result.RowErrors, err)
	s.metrics.CounterSyncErrors.WithLabelValues(metricsSource).Inc()
}
