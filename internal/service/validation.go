package service

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/astromusic/astromusic/internal/model"
)

// Input limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxNameLength     = 100
	MaxEmailLength    = 255
	MaxPlaceLength    = 255
)

// BirthInput is the unvalidated wire form of birth inputs.
type BirthInput struct {
	Date      string
	Time      string
	Latitude  *float64
	Longitude *float64
	Place     string
	Timezone  string
}

// ParseBirthInput validates in and converts it to model.BirthInputs.
// Date accepts YYYY-MM-DD or an RFC 3339 timestamp, whose calendar date is used.
func ParseBirthInput(in BirthInput) (model.BirthInputs, error) {
	var out model.BirthInputs

	date, err := parseDate(in.Date)
	if err != nil {
		return out, err
	}

	tod, err := model.ParseTimeOfDay(in.Time)
	if err != nil {
		return out, invalid("birth_time", "must be HH:MM")
	}

	if in.Latitude == nil {
		return out, invalid("birth_latitude", "is required")
	}
	if *in.Latitude < -90 || *in.Latitude > 90 {
		return out, invalid("birth_latitude", "must be between -90 and 90")
	}
	if in.Longitude == nil {
		return out, invalid("birth_longitude", "is required")
	}
	if *in.Longitude < -180 || *in.Longitude > 180 {
		return out, invalid("birth_longitude", "must be between -180 and 180")
	}

	place := strings.TrimSpace(in.Place)
	if place == "" {
		return out, invalid("birth_place", "is required")
	}
	if utf8.RuneCountInString(place) > MaxPlaceLength {
		return out, invalid("birth_place", "is too long")
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		return out, invalid("timezone", "is required")
	}
	if _, err := time.LoadLocation(tz); err != nil || strings.EqualFold(tz, "local") {
		return out, invalid("timezone", "must be an IANA timezone name")
	}

	return model.BirthInputs{
		Date:      date,
		Time:      tod,
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Place:     place,
		Timezone:  tz,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, invalid("birth_date", "is required")
	}
	if d, err := time.Parse(model.DateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, invalid("birth_date", "must be YYYY-MM-DD")
}

// normalizeEmail lower-cases and validates a bare email address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	if len(email) > MaxEmailLength {
		return "", invalid("email", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", invalid("email", "must be a valid email address")
	}
	return email, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxNameLength {
		return "", invalid("name", "must be 1 to 100 characters")
	}
	return name, nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return invalid("password", "must be 8 to 100 characters")
	}
	return nil
}
