package activities

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrActivityNotFound = errors.New("activity not found")
)

type Source string

const (
	SourceStrava Source = "strava"
	SourceSheet  Source = "sheet"
)

const TypeRun = "Run"

// Activity is one recorded exercise session. StartDate holds the local wall
// clock of the athlete, stored without time zone.
type Activity struct {
	ID                 int64     `json:"id"`
	Source             Source    `json:"source"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          *string   `json:"sport_type"`
	WorkoutType        *int      `json:"workout_type"`
	StartDate          time.Time `json:"start_date"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	Distance           float64   `json:"distance"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       *float64  `json:"average_speed"`
	MaxSpeed           *float64  `json:"max_speed"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	MaxHeartrate       *float64  `json:"max_heartrate"`
	ElevHigh           *float64  `json:"elev_high"`
	ElevLow            *float64  `json:"elev_low"`
	Description        *string   `json:"description"`
	Calories           *float64  `json:"calories"`
	LocationCountry    *string   `json:"location_country"`
	LocationState      *string   `json:"location_state"`
	LocationCity       *string   `json:"location_city"`
	Featured           bool      `json:"featured"`
	LastSyncedAt       time.Time `json:"last_synced_at"`
}

// StartDay is the calendar date of the activity.
func (a Activity) StartDay() time.Time {
	y, m, d := a.StartDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RaceFields are the race attributes an adapter can set. A nil field leaves
// the stored value untouched on upsert.
type RaceFields struct {
	Placement *int    `json:"placement"`
	Category  *string `json:"category"`
	RaceType  *string `json:"race_type"`
	PhotoURL  *string `json:"photo_url"`
}

type Race struct {
	ID         int   `json:"id"`
	ActivityID int64 `json:"activity_id"`
	RaceFields
}

// RaceWithActivity is a race joined with its activity. Race is nil for a
// featured activity that was never classified as a race.
type RaceWithActivity struct {
	Activity Activity
	Race     *Race
}

type raceView struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	StartDateLocal     time.Time `json:"start_date_local"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	Distance           float64   `json:"distance"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       *float64  `json:"average_speed"`
	MaxSpeed           *float64  `json:"max_speed"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	MaxHeartrate       *float64  `json:"max_heartrate"`
	ElevHigh           *float64  `json:"elev_high"`
	ElevLow            *float64  `json:"elev_low"`
	Type               string    `json:"type"`
	SportType          *string   `json:"sport_type"`
	WorkoutType        *int      `json:"workout_type"`
	Description        *string   `json:"description"`
	Calories           *float64  `json:"calories"`
	LocationCountry    *string   `json:"location_country"`
	LocationState      *string   `json:"location_state"`
	LocationCity       *string   `json:"location_city"`
	Featured           bool      `json:"featured"`
	Source             Source    `json:"source"`
	Placement          *int      `json:"placement"`
	Category           *string   `json:"category"`
	RaceType           *string   `json:"race_type"`
	PhotoURL           *string   `json:"photo_url"`
}

// MarshalJSON flattens the race onto its activity, the shape the dashboard
// front-end renders.
func (rwa RaceWithActivity) MarshalJSON() ([]byte, error) {
	a := rwa.Activity
	view := raceView{
		ID:                 a.ID,
		Name:               a.Name,
		StartDateLocal:     a.StartDate,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		Distance:           a.Distance,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		AverageHeartrate:   a.AverageHeartrate,
		MaxHeartrate:       a.MaxHeartrate,
		ElevHigh:           a.ElevHigh,
		ElevLow:            a.ElevLow,
		Type:               a.Type,
		SportType:          a.SportType,
		WorkoutType:        a.WorkoutType,
		Description:        a.Description,
		Calories:           a.Calories,
		LocationCountry:    a.LocationCountry,
		LocationState:      a.LocationState,
		LocationCity:       a.LocationCity,
		Featured:           a.Featured,
		Source:             a.Source,
	}
	if rwa.Race != nil {
		view.Placement = rwa.Race.Placement
		view.Category = rwa.Race.Category
		view.RaceType = rwa.Race.RaceType
		view.PhotoURL = rwa.Race.PhotoURL
	}
	return json.Marshal(view)
}

// ActivityFilter narrows ListActivities. Empty Type matches every type,
// From is inclusive and To exclusive.
type ActivityFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

// YearFilter returns the filter for activities of type t started in year.
func YearFilter(t string, year int) ActivityFilter {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	return ActivityFilter{
		Type: t,
		From: &from,
		To:   &to,
	}
}
