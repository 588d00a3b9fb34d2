// Package model defines domain entities for the application.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts for the wire form of birth date and time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// PlanetPosition is one body reported by the ephemeris.
// Optional attributes are nil when the ephemeris omits them.
type PlanetPosition struct {
	Name      string   `json:"name"`
	Sign      *Sign    `json:"sign"`
	Degree    *float64 `json:"degree"`
	House     *int     `json:"house"`
	Nakshatra *string  `json:"nakshatra"`
	Pada      *int     `json:"pada"`
}

// TimeOfDay is a wall-clock birth time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("time %q is not in HH:MM format", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || len(hh) != 2 || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("time %q has an invalid hour", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q has an invalid minute", s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// BirthInputs are the user-supplied facts a chart is derived from.
type BirthInputs struct {
	Date      time.Time // Calendar date, time-of-day ignored
	Time      TimeOfDay
	Latitude  float64
	Longitude float64
	Place     string
	Timezone  string
}

// BirthChart is the single chart record owned by a user.
type BirthChart struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Inputs    BirthInputs      `json:"-"`
	Ascendant Sign             `json:"lagna"`
	SunSign   Sign             `json:"sun_sign"`
	MoonSign  Sign             `json:"moon_sign"`
	Planets   []PlanetPosition `json:"planets"`
	Raag      string           `json:"suggested_raag"`
	RawChart  string           `json:"-"`
	// Degraded is true when the ephemeris failed and placeholder values were stored.
	Degraded     bool      `json:"degraded"`
	CalculatedAt time.Time `json:"calculated_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Transit is the current position of a planet, excluding chart angles.
type Transit struct {
	Planet      string  `json:"planet"`
	CurrentSign string  `json:"current_sign"`
	Description string  `json:"description"`
	Influence   string  `json:"influence"`
	Intensity   float64 `json:"intensity"`
}

// ZodiacInfo describes a sign with its localized name and raag.
type ZodiacInfo struct {
	English       string `json:"english"`
	Hindi         string `json:"hindi"`
	SuggestedRaag string `json:"suggested_raag"`
}

// ChartData is the parsed view of a stored chart with localized sign names.
type ChartData struct {
	Lagna         Sign             `json:"lagna"`
	LagnaHindi    string           `json:"lagna_hindi"`
	SunSign       Sign             `json:"sun_sign"`
	SunSignHindi  string           `json:"sun_sign_hindi"`
	MoonSign      Sign             `json:"moon_sign"`
	MoonSignHindi string           `json:"moon_sign_hindi"`
	Planets       []PlanetPosition `json:"planets"`
	Houses        []any            `json:"houses"`
	SuggestedRaag string           `json:"suggested_raag"`
}
