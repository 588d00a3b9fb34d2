package dto

import (
	"time"

	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/service"
)

// BirthChartRequest carries birth inputs. Coordinates are pointers so a
// missing value is distinguishable from zero.
type BirthChartRequest struct {
	BirthDate      string   `json:"birth_date"`
	BirthTime      string   `json:"birth_time"`
	BirthLatitude  *float64 `json:"birth_latitude"`
	BirthLongitude *float64 `json:"birth_longitude"`
	BirthPlace     string   `json:"birth_place"`
	Timezone       string   `json:"timezone"`
}

// ToInput converts the request for the service layer.
func (r BirthChartRequest) ToInput() service.BirthInput {
	return service.BirthInput{
		Date:      r.BirthDate,
		Time:      r.BirthTime,
		Latitude:  r.BirthLatitude,
		Longitude: r.BirthLongitude,
		Place:     r.BirthPlace,
		Timezone:  r.Timezone,
	}
}

// BirthChartResponse is a stored chart record.
type BirthChartResponse struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	BirthDate      string                 `json:"birth_date"`
	BirthTime      string                 `json:"birth_time"`
	BirthLatitude  float64                `json:"birth_latitude"`
	BirthLongitude float64                `json:"birth_longitude"`
	BirthPlace     string                 `json:"birth_place"`
	Timezone       string                 `json:"timezone"`
	Lagna          model.Sign             `json:"lagna"`
	SunSign        model.Sign             `json:"sun_sign"`
	MoonSign       model.Sign             `json:"moon_sign"`
	Planets        []model.PlanetPosition `json:"planets"`
	SuggestedRaag  string                 `json:"suggested_raag"`
	Degraded       bool                   `json:"degraded"`
	CalculatedAt   time.Time              `json:"calculated_at"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ToBirthChartResponse converts a stored chart.
func ToBirthChartResponse(c *model.BirthChart) *BirthChartResponse {
	planets := c.Planets
	if planets == nil {
		planets = []model.PlanetPosition{}
	}
	return &BirthChartResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		BirthDate:      c.Inputs.Date.Format(model.DateLayout),
		BirthTime:      c.Inputs.Time.String(),
		BirthLatitude:  c.Inputs.Latitude,
		BirthLongitude: c.Inputs.Longitude,
		BirthPlace:     c.Inputs.Place,
		Timezone:       c.Inputs.Timezone,
		Lagna:          c.Ascendant,
		SunSign:        c.SunSign,
		MoonSign:       c.MoonSign,
		Planets:        planets,
		SuggestedRaag:  c.Raag,
		Degraded:       c.Degraded,
		CalculatedAt:   c.CalculatedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// DerivationResponse is a chart computed without being stored.
type DerivationResponse struct {
	Lagna           model.Sign             `json:"lagna"`
	LagnaHindi      string                 `json:"lagna_hindi"`
	SunSign         model.Sign             `json:"sun_sign"`
	SunSignHindi    string                 `json:"sun_sign_hindi"`
	MoonSign        model.Sign             `json:"moon_sign"`
	MoonSignHindi   string                 `json:"moon_sign_hindi"`
	Planets         []model.PlanetPosition `json:"planets"`
	SuggestedRaag   string                 `json:"suggested_raag"`
	AscendantDegree float64                `json:"ascendant_degree"`
	HousePositions  []int                  `json:"house_positions"`
	Degraded        bool                   `json:"degraded"`
}

// ToDerivationResponse converts a derivation.
func ToDerivationResponse(d *chart.Derivation) *DerivationResponse {
	houses := make([]int, 12)
	for i := range houses {
		houses[i] = i + 1
	}
	return &DerivationResponse{
		Lagna:           d.Ascendant,
		LagnaHindi:      d.AscendantHindi,
		SunSign:         d.SunSign,
		SunSignHindi:    d.SunHindi,
		MoonSign:        d.MoonSign,
		MoonSignHindi:   d.MoonHindi,
		Planets:         d.Planets,
		SuggestedRaag:   d.Raag,
		AscendantDegree: d.AscendantDegree(),
		HousePositions:  houses,
		Degraded:        d.Degraded,
	}
}

// CosmicInfluenceRequest is the body of POST /api/v1/astrology/cosmic-influence.
// When BirthChart is omitted the caller's stored chart is used.
type CosmicInfluenceRequest struct {
	BirthChart *ChartSigns `json:"birth_chart,omitempty"`
	Date       string      `json:"date,omitempty"`
}

// ChartSigns names the signs of a chart.
type ChartSigns struct {
	SunSign   string `json:"sun_sign,omitempty"`
	MoonSign  string `json:"moon_sign,omitempty"`
	Ascendant string `json:"ascendant,omitempty"`
}

// TransitsResponse wraps the current transits.
type TransitsResponse struct {
	Transits []model.Transit `json:"transits"`
}
