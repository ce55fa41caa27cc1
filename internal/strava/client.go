package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/2beens/rundash/internal/activities"
	"github.com/2beens/rundash/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var ErrUpstream = errors.New("strava api error")

// SummaryActivity is the part of the Strava activity payload we keep.
type SummaryActivity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          *string   `json:"sport_type"`
	WorkoutType        *int      `json:"workout_type"`
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
	Description        *string   `json:"description"`
	Calories           *float64  `json:"calories"`
	LocationCountry    *string   `json:"location_country"`
	LocationState      *string   `json:"location_state"`
	LocationCity       *string   `json:"location_city"`
}

// ToActivity maps the payload 1:1 onto a stored activity. The second
// return value tells whether it counts as a race: either Strava typed it
// "Race", or its workout type is one of raceWorkoutTypes.
func (sa SummaryActivity) ToActivity(raceWorkoutTypes []int) (activities.Activity, bool) {
	a := activities.Activity{
		ID:                 sa.ID,
		Source:             activities.SourceStrava,
		Name:               sa.Name,
		Type:               sa.Type,
		SportType:          sa.SportType,
		WorkoutType:        sa.WorkoutType,
		StartDate:          localWallClock(sa.StartDateLocal),
		MovingTime:         sa.MovingTime,
		ElapsedTime:        sa.ElapsedTime,
		Distance:           sa.Distance,
		TotalElevationGain: sa.TotalElevationGain,
		AverageSpeed:       sa.AverageSpeed,
		MaxSpeed:           sa.MaxSpeed,
		AverageHeartrate:   sa.AverageHeartrate,
		MaxHeartrate:       sa.MaxHeartrate,
		ElevHigh:           sa.ElevHigh,
		ElevLow:            sa.ElevLow,
		Description:        sa.Description,
		Calories:           sa.Calories,
		LocationCountry:    sa.LocationCountry,
		LocationState:      sa.LocationState,
		LocationCity:       sa.LocationCity,
	}

	isRace := sa.Type == "Race" ||
		(sa.WorkoutType != nil && slices.Contains(raceWorkoutTypes, *sa.WorkoutType))
	return a, isRace
}

// localWallClock drops the zone: start_date_local carries a bogus "Z".
func localWallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// ListActivities fetches one page of the athlete's activities, newest first.
func (c *Client) ListActivities(ctx context.Context, accessToken string, page, perPage int) (_ []SummaryActivity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.client.listActivities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("per_page", perPage))

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	activitiesUrl := fmt.Sprintf("%s/athlete/activities?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", activitiesUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read activities response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: token rejected: %s", ErrNotAuthenticated, respBytes)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, respBytes)
	}

	var summaries []SummaryActivity
	if err := json.Unmarshal(respBytes, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal activities: %w", err)
	}
	span.SetAttributes(attribute.Int("activities", len(summaries)))

	return summaries, nil
}
