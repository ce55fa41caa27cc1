package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/rundash/internal/activities"
	"github.com/2beens/rundash/internal/photos"
	"github.com/2beens/rundash/internal/telemetry/metrics"
	"github.com/2beens/rundash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=syncer_mocks_test.go -package=sheets_test

const metricsSource = "sheet"

type activitiesRepo interface {
	FindOrCreateSheetActivity(ctx context.Context, a activities.Activity) (int64, error)
	UpsertRace(ctx context.Context, activityID int64, fields activities.RaceFields) (*activities.Race, error)
	StravaRacesOnDate(ctx context.Context, day time.Time) ([]activities.Activity, error)
}

type RowsReader interface {
	ReadRows(ctx context.Context) ([]RawRow, error)
}

// SyncResult counts what a race sync did. Duplicates are rows that share
// their date with a Strava race; they are stored anyway.
type SyncResult struct {
	Rows       int   `json:"rows"`
	Upserted   int   `json:"upserted"`
	Photos     int   `json:"photos"`
	Duplicates int   `json:"duplicates"`
	Failed     int   `json:"failed"`
	RowErrors  error `json:"-"`
}

type SyncerParams struct {
	Repo   activitiesRepo
	Reader RowsReader
	// Photos is optional.
	Photos         photos.Finder
	MetricsManager *metrics.Manager
}

type Syncer struct {
	repo    activitiesRepo
	reader  RowsReader
	photos  photos.Finder
	metrics *metrics.Manager
}

func NewSyncer(params SyncerParams) *Syncer {
	return &Syncer{
		repo:    params.Repo,
		reader:  params.Reader,
		photos:  params.Photos,
		metrics: params.MetricsManager,
	}
}

// Sync stores every roster row as a sheet activity with its race. Reading
// the sheet must succeed; after that a bad row is counted and skipped.
func (s *Syncer) Sync(ctx context.Context) (_ SyncResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.syncer.sync")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start := time.Now()
	defer func() {
		s.metrics.HistogramSyncDuration.WithLabelValues(metricsSource).Observe(time.Since(start).Seconds())
	}()

	rawRows, err := s.reader.ReadRows(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("read races sheet: %w", err)
	}

	result := SyncResult{Rows: len(rawRows)}
	for _, raw := range rawRows {
		s.syncRow(ctx, raw, &result)
	}

	span.SetAttributes(
		attribute.Int("rows", result.Rows),
		attribute.Int("upserted", result.Upserted),
		attribute.Int("failed", result.Failed),
	)
	log.Infof("races sheet sync done: rows %d, upserted %d, photos %d, duplicates %d, failed %d",
		result.Rows, result.Upserted, result.Photos, result.Duplicates, result.Failed)

	return result, nil
}

func (s *Syncer) syncRow(ctx context.Context, raw RawRow, result *SyncResult) {
	row, err := ParseRow(raw)
	if err != nil {
		s.rowFailed(result, err)
		return
	}

	if photoURL := s.findPhoto(ctx, row.Activity.Name); photoURL != "" {
		row.Race.PhotoURL = &photoURL
		result.Photos++
	}

	s.warnOnStravaDuplicate(ctx, row, result)

	activityID, err := s.repo.FindOrCreateSheetActivity(ctx, row.Activity)
	if err != nil {
		s.rowFailed(result, fmt.Errorf("line %d, store activity %q: %w", row.Line, row.Activity.Name, err))
		return
	}

	if _, err := s.repo.UpsertRace(ctx, activityID, row.Race); err != nil {
		s.rowFailed(result, fmt.Errorf("line %d, store race %q: %w", row.Line, row.Activity.Name, err))
		return
	}

	result.Upserted++
	s.metrics.CounterSyncedActivities.WithLabelValues(metricsSource).Inc()
}

// findPhoto never fails the row; a lookup error just means no photo.
func (s *Syncer) findPhoto(ctx context.Context, raceName string) string {
	if s.photos == nil {
		return ""
	}
	photoURL, err := s.photos.FindPhoto(ctx, raceName)
	if err != nil {
		log.Warnf("races sheet sync: photo lookup for %q: %s", raceName, err)
		return ""
	}
	return photoURL
}

// warnOnStravaDuplicate flags a sheet race that probably is a Strava race
// too. The two are never merged.
func (s *Syncer) warnOnStravaDuplicate(ctx context.Context, row RaceRow, result *SyncResult) {
	stravaRaces, err := s.repo.StravaRacesOnDate(ctx, row.Activity.StartDay())
	if err != nil {
		log.Warnf("races sheet sync: check strava races on %s: %s", row.Activity.StartDay().Format(time.DateOnly), err)
		return
	}
	if len(stravaRaces) == 0 {
		return
	}

	result.Duplicates++
	for _, sr := range stravaRaces {
		log.Warnf("races sheet sync: line %d, %q on %s may duplicate strava race %d %q",
			row.Line, row.Activity.Name, row.Activity.StartDay().Format(time.DateOnly), sr.ID, sr.Name)
	}
}

func (s *Syncer) rowFailed(result *SyncResult, err error) {
	log.Errorf("races sheet sync: %s", err)
	result.Failed++
	result.RowErrors = multierr.Append(result.RowErrors, err)
	s.metrics.CounterSyncErrors.WithLabelValues(metricsSource).Inc()
}
