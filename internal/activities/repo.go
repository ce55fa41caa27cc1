package activities

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const activityColumns = `a.id, a.source, a.name, a.type, a.sport_type, a.workout_type, a.start_date,
	a.moving_time, a.elapsed_time, a.distance, a.total_elevation_gain,
	a.average_speed, a.max_speed, a.average_heartrate, a.max_heartrate, a.elev_high, a.elev_low,
	a.description, a.calories, a.location_country, a.location_state, a.location_city,
	a.featured, a.last_synced_at`

const raceColumns = `r.id, r.activity_id, r.placement, r.category, r.race_type, r.photo_url`

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// EnsureSchema creates the tables, indexes and the manual id sequence if missing.
func (r *Repo) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.ensureSchema")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// UpsertActivity inserts the activity or replaces every mutable field of the
// row with the same id.
func (r *Repo) UpsertActivity(ctx context.Context, a Activity) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("activity.id", a.ID))

	if err := upsertActivity(ctx, r.db, a); err != nil {
		return fmt.Errorf("upsert activity %d: %w", a.ID, err)
	}
	return nil
}

func upsertActivity(ctx context.Context, q execer, a Activity) error {
	if a.Source == "" {
		a.Source = SourceStrava
	}
	_, err := q.Exec(
		ctx,
		`INSERT INTO activity (
				id, source, name, type, sport_type, workout_type, start_date,
				moving_time, elapsed_time, distance, total_elevation_gain,
				average_speed, max_speed, average_heartrate, max_heartrate, elev_high, elev_low,
				description, calories, location_country, location_state, location_city,
				featured, last_synced_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
				$18, $19, $20, $21, $22, $23, now()
			)
			ON CONFLICT (id) DO UPDATE SET
				source = EXCLUDED.source,
				name = EXCLUDED.name,
				type = EXCLUDED.type,
				sport_type = EXCLUDED.sport_type,
				workout_type = EXCLUDED.workout_type,
				start_date = EXCLUDED.start_date,
				moving_time = EXCLUDED.moving_time,
				elapsed_time = EXCLUDED.elapsed_time,
				distance = EXCLUDED.distance,
				total_elevation_gain = EXCLUDED.total_elevation_gain,
				average_speed = EXCLUDED.average_speed,
				max_speed = EXCLUDED.max_speed,
				average_heartrate = EXCLUDED.average_heartrate,
				max_heartrate = EXCLUDED.max_heartrate,
				elev_high = EXCLUDED.elev_high,
				elev_low = EXCLUDED.elev_low,
				description = EXCLUDED.description,
				calories = EXCLUDED.calories,
				location_country = EXCLUDED.location_country,
				location_state = EXCLUDED.location_state,
				location_city = EXCLUDED.location_city,
				featured = EXCLUDED.featured,
				last_synced_at = now();`,
		a.ID, a.Source, a.Name, a.Type, a.SportType, a.WorkoutType, a.StartDate,
		a.MovingTime, a.ElapsedTime, a.Distance, a.TotalElevationGain,
		a.AverageSpeed, a.MaxSpeed, a.AverageHeartrate, a.MaxHeartrate, a.ElevHigh, a.ElevLow,
		a.Description, a.Calories, a.LocationCountry, a.LocationState, a.LocationCity,
		a.Featured,
	)
	return err
}

// UpsertRace creates the race of the given activity, or merges the non-nil
// fields into the existing one.
func (r *Repo) UpsertRace(ctx context.Context, activityID int64, fields RaceFields) (_ *Race, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.upsertRace")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("activity.id", activityID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO race AS r (activity_id, placement, category, race_type, photo_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (activity_id) DO UPDATE SET
				placement = COALESCE(EXCLUDED.placement, r.placement),
				category = COALESCE(EXCLUDED.category, r.category),
				race_type = COALESCE(EXCLUDED.race_type, r.race_type),
				photo_url = COALESCE(EXCLUDED.photo_url, r.photo_url)
			RETURNING `+raceColumns+`;`,
		activityID, fields.Placement, fields.Category, fields.RaceType, fields.PhotoURL,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	race, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (Race, error) {
		var race Race
		err := row.Scan(&race.ID, &race.ActivityID, &race.Placement, &race.Category, &race.RaceType, &race.PhotoURL)
		return race, err
	})
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("race for activity %d: %w", activityID, ErrActivityNotFound)
		}
		return nil, fmt.Errorf("upsert race for activity %d: %w", activityID, err)
	}

	return &race, nil
}

// ListActivities returns the activities matching the filter, ordered by
// start date and id.
func (r *Repo) ListActivities(ctx context.Context, filter ActivityFilter) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("filter.type", filter.Type))

	var (
		conditions []string
		args       []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, "a.type = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "a.start_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "a.start_date < $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + activityColumns + ` FROM activity a`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY a.start_date, a.id;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Activity, error) {
		return scanActivity(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect activities: %w", err)
	}

	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return activities, nil
}

// ListRacesWithActivities returns every race joined with its activity,
// most recent first.
func (r *Repo) ListRacesWithActivities(ctx context.Context) (_ []RaceWithActivity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.listRaces")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+activityColumns+`, `+raceColumns+`
			FROM race r
			JOIN activity a ON a.id = r.activity_id
			ORDER BY a.start_date DESC, a.id DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query races: %w", err)
	}
	defer rows.Close()

	races, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (RaceWithActivity, error) {
		return scanRaceWithActivity(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect races: %w", err)
	}

	return races, nil
}

// GetFeaturedRace returns the most recent featured activity with its race, if any.
func (r *Repo) GetFeaturedRace(ctx context.Context) (_ *RaceWithActivity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.featuredRace")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			tracing.EndSpanWithErrCheck(span, nil)
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+activityColumns+`, `+raceColumns+`
			FROM activity a
			LEFT JOIN race r ON r.activity_id = a.id
			WHERE a.featured
			ORDER BY a.start_date DESC, a.id DESC
			LIMIT 1;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query featured race: %w", err)
	}
	defer rows.Close()

	featured, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (RaceWithActivity, error) {
		return scanRaceWithActivity(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("collect featured race: %w", err)
	}

	return &featured, nil
}

// FindOrCreateSheetActivity stores a spreadsheet activity identified by its
// name and start date. A new one gets a negative id from the manual sequence.
// Returns the id of the stored activity.
func (r *Repo) FindOrCreateSheetActivity(ctx context.Context, a Activity) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.findOrCreateSheet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.name", a.Name))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback(ctx)
	}()

	var id int64
	err = tx.QueryRow(
		ctx,
		`SELECT id FROM activity
			WHERE source = $1 AND name = $2 AND start_date::date = $3::date
			FOR UPDATE;`,
		SourceSheet, a.Name, a.StartDay().Format(time.DateOnly),
	).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := tx.QueryRow(ctx, `SELECT nextval('manual_activity_id_seq');`).Scan(&id); err != nil {
			return 0, fmt.Errorf("next manual activity id: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("find sheet activity %q: %w", a.Name, err)
	}

	a.ID = id
	a.Source = SourceSheet
	if err := upsertActivity(ctx, tx, a); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return 0, fmt.Errorf("sheet activity %q on %s created concurrently: %w", a.Name, a.StartDay().Format(time.DateOnly), err)
		}
		return 0, fmt.Errorf("upsert sheet activity %q: %w", a.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	span.SetAttributes(attribute.Int64("activity.id", id))
	return id, nil
}

// StravaRacesOnDate returns the Strava activities classified as races that
// started on the given calendar day.
func (r *Repo) StravaRacesOnDate(ctx context.Context, day time.Time) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.stravaRacesOnDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+activityColumns+`
			FROM activity a
			JOIN race r ON r.activity_id = a.id
			WHERE a.source = $1 AND a.start_date::date = $2::date
			ORDER BY a.start_date, a.id;`,
		SourceStrava, day.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("query strava races on date: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Activity, error) {
		return scanActivity(row)
	})
}

func activityScanTargets(a *Activity) []any {
	return []any{
		&a.ID, &a.Source, &a.Name, &a.Type, &a.SportType, &a.WorkoutType, &a.StartDate,
		&a.MovingTime, &a.ElapsedTime, &a.Distance, &a.TotalElevationGain,
		&a.AverageSpeed, &a.MaxSpeed, &a.AverageHeartrate, &a.MaxHeartrate, &a.ElevHigh, &a.ElevLow,
		&a.Description, &a.Calories, &a.LocationCountry, &a.LocationState, &a.LocationCity,
		&a.Featured, &a.LastSyncedAt,
	}
}

func scanActivity(row pgx.Row) (Activity, error) {
	var a Activity
	err := row.Scan(activityScanTargets(&a)...)
	return a, err
}

func scanRaceWithActivity(row pgx.Row) (RaceWithActivity, error) {
	var (
		rwa        RaceWithActivity
		raceID     *int
		activityID *int64
		fields     RaceFields
	)
	targets := append(
		activityScanTargets(&rwa.Activity),
		&raceID, &activityID, &fields.Placement, &fields.Category, &fields.RaceType, &fields.PhotoURL,
	)
	if err := row.Scan(targets...); err != nil {
		return rwa, err
	}
	if raceID != nil && activityID != nil {
		rwa.Race = &Race{
			ID:         *raceID,
			ActivityID: *activityID,
			RaceFields: fields,
		}
	}
	return rwa, nil
}
