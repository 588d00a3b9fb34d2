package service

import (
	"context"
	"errors"
	"time"

	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/model"
)

// ErrUnknownSign is returned for a sign name outside the zodiac.
var ErrUnknownSign = errors.New("unknown zodiac sign")

// AstrologyService exposes stateless chart calculations.
type AstrologyService struct {
	deriver *chart.Deriver
	charts  *ChartService
	now     func() time.Time
}

// NewAstrologyService creates a new AstrologyService.
// charts supplies the stored chart when an influence request omits one.
func NewAstrologyService(deriver *chart.Deriver, charts *ChartService) *AstrologyService {
	return &AstrologyService{deriver: deriver, charts: charts, now: time.Now}
}

// Calculate derives a chart without storing it.
func (s *AstrologyService) Calculate(ctx context.Context, in BirthInput) (*chart.Derivation, error) {
	inputs, err := ParseBirthInput(in)
	if err != nil {
		return nil, err
	}
	return s.deriver.Derive(ctx, inputs)
}

// Transits returns the current planetary transits.
func (s *AstrologyService) Transits(ctx context.Context) ([]model.Transit, error) {
	return s.deriver.Transits(ctx, s.now())
}

// InfluenceChart carries the signs supplied with an influence request.
type InfluenceChart struct {
	Ascendant string
	MoonSign  string
}

// InfluenceInput identifies the chart an influence is computed for.
// When Chart is nil the caller's stored chart is used.
type InfluenceInput struct {
	UserID string
	Chart  *InfluenceChart
	Date   string
}

// Influence computes the day's cosmic influence.
func (s *AstrologyService) Influence(ctx context.Context, in InfluenceInput) (*chart.Influence, error) {
	date := in.Date
	if date == "" {
		date = s.now().UTC().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}

	var ascendant, moon model.Sign
	if in.Chart == nil {
		rec, err := s.charts.GetForAccount(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		ascendant, moon = rec.Ascendant, rec.MoonSign
	} else {
		// Unrecognized names are treated as unmapped, not rejected.
		ascendant, _ = model.ParseSign(in.Chart.Ascendant)
		moon, _ = model.ParseSign(in.Chart.MoonSign)
	}

	return s.deriver.Influence(ctx, ascendant, moon, date, s.now())
}

// Zodiac describes a sign.
func (s *AstrologyService) Zodiac(sign string) (model.ZodiacInfo, error) {
	parsed, ok := model.ParseSign(sign)
	if !ok {
		return model.ZodiacInfo{}, ErrUnknownSign
	}
	return s.deriver.Table().Info(parsed.String()), nil
}
