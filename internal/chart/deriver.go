// Package chart derives ascendant, sun and moon signs and a raag
// recommendation from ephemeris output.
package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/astromusic/astromusic/internal/ephemeris"
	"github.com/astromusic/astromusic/internal/metrics"
	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/zodiac"
)

// ErrComputationFailed is returned in strict mode when the ephemeris fails
// or omits the ascendant, sun or moon.
var ErrComputationFailed = errors.New("chart computation failed")

// Mode selects how ephemeris failures are handled.
type Mode string

const (
	// ModeTolerant replaces failed computations with the fallback chart.
	ModeTolerant Mode = "tolerant"
	// ModeStrict surfaces failed computations as ErrComputationFailed.
	ModeStrict Mode = "strict"
)

// ParseMode parses a DERIVATION_MODE value.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTolerant, "":
		return ModeTolerant, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown derivation mode %q", s)
	}
}

// Placeholder signs of the fallback chart.
const (
	FallbackAscendant = model.Aries
	FallbackSun       = model.Aries
	FallbackMoon      = model.Cancer
)

// Derivation is the outcome of one chart derivation.
// Sun and moon may be empty in tolerant mode when the ephemeris omitted them.
type Derivation struct {
	Ascendant      model.Sign
	AscendantHindi string
	SunSign        model.Sign
	SunHindi       string
	MoonSign       model.Sign
	MoonHindi      string
	Planets        []model.PlanetPosition
	Raag           string
	Raw            string
	Degraded       bool
}

// Options configures a Deriver.
type Options struct {
	Mode     Mode
	Recorder metrics.Recorder
	// Reference is the location used for transits.
	Reference Location
}

// Deriver turns birth inputs into a Derivation.
type Deriver struct {
	calc      ephemeris.Calculator
	table     *zodiac.Table
	mode      Mode
	recorder  metrics.Recorder
	reference Location
	logger    *slog.Logger
}

// NewDeriver creates a new Deriver.
func NewDeriver(calc ephemeris.Calculator, table *zodiac.Table, logger *slog.Logger, opts Options) *Deriver {
	if opts.Mode == "" {
		opts.Mode = ModeTolerant
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoop()
	}
	if opts.Reference == (Location{}) {
		opts.Reference = DefaultReference
	}
	return &Deriver{
		calc:      calc,
		table:     table,
		mode:      opts.Mode,
		recorder:  opts.Recorder,
		reference: opts.Reference,
		logger:    logger,
	}
}

// Mode reports the deriver's failure mode.
func (d *Deriver) Mode() Mode {
	return d.mode
}

// Table returns the recommendation table the deriver looks up raags in.
func (d *Deriver) Table() *zodiac.Table {
	return d.table
}

// Derive computes a chart for in. Latitude and longitude are not validated.
// In tolerant mode it never returns an error.
func (d *Deriver) Derive(ctx context.Context, in model.BirthInputs) (*Derivation, error) {
	req := ephemeris.Request{
		Year:      in.Date.Year(),
		Month:     int(in.Date.Month()),
		Day:       in.Date.Day(),
		Hour:      in.Time.Hour,
		Minute:    in.Time.Minute,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Timezone:  in.Timezone,
	}

	start := time.Now()
	result, err := d.calc.Calculate(ctx, req)
	d.recorder.ObserveEphemerisDuration(time.Since(start))
	if err != nil {
		return d.failed(fmt.Errorf("ephemeris: %w", err))
	}

	deriv := &Derivation{
		Planets: make([]model.PlanetPosition, 0, len(result.Bodies)),
		Raw:     result.Raw,
	}
	for _, body := range result.Bodies {
		pos := toPosition(body)
		deriv.Planets = append(deriv.Planets, pos)

		if pos.Sign == nil {
			continue
		}
		switch {
		case isAscendant(body.Object):
			deriv.Ascendant = *pos.Sign
		case strings.EqualFold(body.Object, "sun"):
			deriv.SunSign = *pos.Sign
		case strings.EqualFold(body.Object, "moon"):
			deriv.MoonSign = *pos.Sign
		}
	}

	if deriv.Ascendant == "" {
		return d.failed(errors.New("ephemeris returned no ascendant"))
	}
	if d.mode == ModeStrict && (deriv.SunSign == "" || deriv.MoonSign == "") {
		return d.failed(errors.New("ephemeris returned no sun or moon sign"))
	}

	deriv.Raag = d.table.Lookup(deriv.Ascendant)
	d.localize(deriv)
	d.recorder.IncChartDerivation(metrics.ResultSuccess)

	return deriv, nil
}

// Fallback returns the placeholder chart used when computation fails.
func (d *Deriver) Fallback() *Derivation {
	deriv := &Derivation{
		Ascendant: FallbackAscendant,
		SunSign:   FallbackSun,
		MoonSign:  FallbackMoon,
		Planets:   []model.PlanetPosition{},
		Raag:      d.table.DefaultRaag(),
		Degraded:  true,
	}
	d.localize(deriv)
	return deriv
}

// RecommendedCategories returns the ascendant's raag followed by the moon's
// raag when the moon is a different sign. Unmapped signs are skipped; if
// neither maps, the result is the default raag alone.
func (d *Deriver) RecommendedCategories(ascendant, moon model.Sign) []string {
	var raags []string
	if raag, ok := d.table.Raag(ascendant); ok {
		raags = append(raags, raag)
	}
	if raag, ok := d.table.Raag(moon); ok && moon != ascendant {
		raags = append(raags, raag)
	}
	if len(raags) == 0 {
		raags = append(raags, d.table.DefaultRaag())
	}
	return raags
}

func (d *Deriver) failed(cause error) (*Derivation, error) {
	if d.mode == ModeStrict {
		d.recorder.IncChartDerivation(metrics.ResultFailed)
		return nil, fmt.Errorf("%w: %v", ErrComputationFailed, cause)
	}

	d.logger.Warn("chart derivation degraded to fallback",
		slog.String("error", cause.Error()),
	)
	d.recorder.IncChartDerivation(metrics.ResultFallback)
	return d.Fallback(), nil
}

func (d *Deriver) localize(deriv *Derivation) {
	deriv.AscendantHindi = d.table.LocalizedName(deriv.Ascendant)
	deriv.SunHindi = d.table.LocalizedName(deriv.SunSign)
	deriv.MoonHindi = d.table.LocalizedName(deriv.MoonSign)
}

func isAscendant(name string) bool {
	return strings.EqualFold(name, "asc") || strings.EqualFold(name, "ascendant")
}

func isAngle(name string) bool {
	return isAscendant(name) || strings.EqualFold(name, "mc")
}

func toPosition(body ephemeris.Body) model.PlanetPosition {
	pos := model.PlanetPosition{
		Name:      body.Object,
		Degree:    body.Degree,
		House:     body.House,
		Nakshatra: body.Nakshatra,
		Pada:      body.Pada,
	}
	if body.Rasi != nil {
		if sign, ok := model.ParseSign(*body.Rasi); ok {
			pos.Sign = &sign
		}
	}
	if pos.House != nil && (*pos.House < 1 || *pos.House > 12) {
		pos.House = nil
	}
	if pos.Pada != nil && (*pos.Pada < 1 || *pos.Pada > 4) {
		pos.Pada = nil
	}
	return pos
}

// AscendantDegree is the ascendant's degree within its sign, or 0 when the
// ephemeris did not report one.
func (d *Derivation) AscendantDegree() float64 {
	for _, p := range d.Planets {
		if isAscendant(p.Name) && p.Degree != nil {
			return *p.Degree
		}
	}
	return 0
}
