package chart

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // reference timezone must resolve without host zoneinfo

	"github.com/astromusic/astromusic/internal/model"
)

// Location is a place on Earth with its IANA timezone.
type Location struct {
	Latitude  float64
	Longitude float64
	Timezone  string
}

// DefaultReference is the location transits are computed for (New Delhi).
var DefaultReference = Location{Latitude: 28.7041, Longitude: 77.1025, Timezone: "Asia/Kolkata"}

const (
	unknownSign       = "Unknown"
	neutralInfluence  = "Neutral"
	neutralIntensity  = 0.5
	moderateEnergy    = "Moderate"
	baselineInfluence = 75.0
)

// Influence summarizes the day's cosmic influence for a chart.
type Influence struct {
	Date               string          `json:"date"`
	EnergyLevel        string          `json:"energy_level"`
	DominantMoods      []string        `json:"dominant_moods"`
	OverallDescription string          `json:"overall_description"`
	Recommendations    []string        `json:"recommendations"`
	ActiveTransits     []model.Transit `json:"active_transits"`
	LuckyRaag          string          `json:"lucky_raag"`
	OverallScore       float64         `json:"overall_score"`
}

// Transits returns the current sign of every body at now, as seen from the
// reference location. The ascendant and midheaven are excluded.
func (d *Deriver) Transits(ctx context.Context, now time.Time) ([]model.Transit, error) {
	if loc, err := time.LoadLocation(d.reference.Timezone); err == nil {
		now = now.In(loc)
	}

	deriv, err := d.Derive(ctx, model.BirthInputs{
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Time:      model.TimeOfDay{Hour: now.Hour(), Minute: now.Minute()},
		Latitude:  d.reference.Latitude,
		Longitude: d.reference.Longitude,
		Timezone:  d.reference.Timezone,
	})
	if err != nil {
		return nil, err
	}

	transits := make([]model.Transit, 0, len(deriv.Planets))
	for _, p := range deriv.Planets {
		if isAngle(p.Name) {
			continue
		}
		sign := unknownSign
		if p.Sign != nil {
			sign = p.Sign.String()
		}
		transits = append(transits, model.Transit{
			Planet:      p.Name,
			CurrentSign: sign,
			Description: fmt.Sprintf("%s in %s", p.Name, sign),
			Influence:   neutralInfluence,
			Intensity:   neutralIntensity,
		})
	}
	return transits, nil
}

// Influence builds the cosmic influence summary for a chart with the given
// ascendant and moon sign on date. Either sign may be empty.
func (d *Deriver) Influence(ctx context.Context, ascendant, moon model.Sign, date string, now time.Time) (*Influence, error) {
	transits, err := d.Transits(ctx, now)
	if err != nil {
		return nil, err
	}

	lucky := d.RecommendedCategories(ascendant, moon)[0]
	ascName := ascendant.String()
	if ascName == "" {
		ascName = unknownSign
	}

	return &Influence{
		Date:          date,
		EnergyLevel:   moderateEnergy,
		DominantMoods: []string{"Calm", "Focused"},
		OverallDescription: fmt.Sprintf("Today's cosmic energy is favorable for introspection and creative pursuits. "+
			"Your %s ascendant is well-supported by current planetary positions.", ascName),
		Recommendations: []string{
			fmt.Sprintf("Listen to %s to harmonize with cosmic energies", lucky),
			"Practice meditation during sunset",
			"Focus on creative projects today",
		},
		ActiveTransits: transits,
		LuckyRaag:      lucky,
		OverallScore:   baselineInfluence,
	}, nil
}
