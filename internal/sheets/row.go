package sheets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/rundash/internal/activities"
)

const (
	colName               = "name"
	colDate               = "date"
	colDistance           = "distance"
	colMovingTime         = "moving_time"
	colTotalElevationGain = "total_elevation_gain"
	colLocationCity       = "location_city"
	colLocationState      = "location_state"
	colLocationCountry    = "location_country"
	colDescription        = "description"
	colType               = "type"
	colFeatured           = "featured"
	colPlacement          = "placement"
	colCategory           = "category"
	colRaceType           = "race_type"
)

var ErrInvalidRow = errors.New("invalid row")

// Slash dates are US style, the Sheets default; dot dates are day first.
var dateLayouts = []string{
	time.DateOnly,
	"2006-1-2",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2.1.2006",
	"2.1.2006.",
	"2. 1. 2006.",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// RaceRow is a parsed sheet row: the activity it describes and its race fields.
type RaceRow struct {
	Line     int
	Activity activities.Activity
	Race     activities.RaceFields
}

func ParseRow(raw RawRow) (RaceRow, error) {
	invalid := func(col string, err error) (RaceRow, error) {
		return RaceRow{}, fmt.Errorf("%w: line %d, %s: %w", ErrInvalidRow, raw.Line, col, err)
	}
	v := raw.Values

	name := v[colName]
	if name == "" {
		return invalid(colName, errors.New("empty"))
	}

	startDate, err := parseDate(v[colDate])
	if err != nil {
		return invalid(colDate, err)
	}

	distance, err := parseDistance(v[colDistance])
	if err != nil {
		return invalid(colDistance, err)
	}

	movingTime, err := parseDuration(v[colMovingTime])
	if err != nil {
		return invalid(colMovingTime, err)
	}

	vert, err := parseFloat(v[colTotalElevationGain])
	if err != nil {
		return invalid(colTotalElevationGain, err)
	}

	placement, err := parsePlacement(v[colPlacement])
	if err != nil {
		return invalid(colPlacement, err)
	}

	activityType := v[colType]
	if activityType == "" {
		activityType = activities.TypeRun
	}

	return RaceRow{
		Line: raw.Line,
		Activity: activities.Activity{
			Source:             activities.SourceSheet,
			Name:               name,
			Type:               activityType,
			StartDate:          startDate,
			MovingTime:         movingTime,
			ElapsedTime:        movingTime,
			Distance:           distance,
			TotalElevationGain: vert,
			Description:        optional(v[colDescription]),
			LocationCountry:    optional(v[colLocationCountry]),
			LocationState:      optional(v[colLocationState]),
			LocationCity:       optional(v[colLocationCity]),
			Featured:           parseFlag(v[colFeatured]),
		},
		Race: activities.RaceFields{
			Placement: placement,
			Category:  optional(v[colCategory]),
			RaceType:  optional(v[colRaceType]),
		},
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format %q", s)
}

// parseDistance reads meters. A "km" suffix converts kilometers,
// thousands separators are dropped.
func parseDistance(s string) (float64, error) {
	s = strings.ToLower(strings.ReplaceAll(s, ",", ""))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "km"):
		s = strings.TrimSuffix(s, "km")
		multiplier = 1000
	case strings.HasSuffix(s, "m"):
		s = strings.TrimSuffix(s, "m")
	}
	d, err := parseFloat(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative distance %v", d)
	}
	return d * multiplier, nil
}

// parseDuration reads whole seconds, or h:mm:ss / mm:ss.
func parseDuration(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ":") {
		secs, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("parse seconds %q: %w", s, err)
		}
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %d", secs)
		}
		return secs, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("parse duration %q: too many parts", s)
	}
	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parse duration %q: bad part %q", s, part)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("parse duration %q: %d out of range", s, n)
		}
		total = total*60 + n
	}
	return total, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return f, nil
}

// parsePlacement accepts "3" as well as "3rd".
func parsePlacement(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	digits := strings.TrimRight(strings.ToLower(s), "stndrh.")
	p, err := strconv.Atoi(digits)
	if err != nil || p < 1 {
		return nil, fmt.Errorf("parse placement %q", s)
	}
	return &p, nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "x", "✓", "✔":
		return true
	default:
		return false
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
