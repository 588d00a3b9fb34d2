package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astromusic/astromusic/internal/model"
)

const (
	// chartCachePrefix is the Redis key prefix for cached birth charts.
	chartCachePrefix = "chart:user:"
	// ChartCacheTTL is the time-to-live for cached charts.
	ChartCacheTTL = time.Hour
)

// cachedChart is the Redis form of a birth chart. It carries the fields the
// API representation hides.
type cachedChart struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	BirthDate    string                 `json:"birth_date"`
	BirthTime    string                 `json:"birth_time"`
	Latitude     float64                `json:"latitude"`
	Longitude    float64                `json:"longitude"`
	Place        string                 `json:"place"`
	Timezone     string                 `json:"timezone"`
	Ascendant    model.Sign             `json:"ascendant"`
	SunSign      model.Sign             `json:"sun_sign"`
	MoonSign     model.Sign             `json:"moon_sign"`
	Planets      []model.PlanetPosition `json:"planets"`
	Raag         string                 `json:"raag"`
	RawChart     string                 `json:"raw_chart"`
	Degraded     bool                   `json:"degraded"`
	CalculatedAt time.Time              `json:"calculated_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// GetChart retrieves the cached chart for userID.
// Returns nil, nil on a cache miss or an unreadable entry.
func (c *Cache) GetChart(ctx context.Context, userID string) (*model.BirthChart, error) {
	data, err := c.client.Get(ctx, chartCachePrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached chart: %w", err)
	}

	var cached cachedChart
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr // corrupted entry is a miss
	}

	date, err := time.Parse(model.DateLayout, cached.BirthDate)
	if err != nil {
		return nil, nil //nolint:nilerr
	}
	tod, err := model.ParseTimeOfDay(cached.BirthTime)
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	return &model.BirthChart{
		ID:     cached.ID,
		UserID: cached.UserID,
		Inputs: model.BirthInputs{
			Date:      date,
			Time:      tod,
			Latitude:  cached.Latitude,
			Longitude: cached.Longitude,
			Place:     cached.Place,
			Timezone:  cached.Timezone,
		},
		Ascendant:    cached.Ascendant,
		SunSign:      cached.SunSign,
		MoonSign:     cached.MoonSign,
		Planets:      cached.Planets,
		Raag:         cached.Raag,
		RawChart:     cached.RawChart,
		Degraded:     cached.Degraded,
		CalculatedAt: cached.CalculatedAt,
		CreatedAt:    cached.CreatedAt,
		UpdatedAt:    cached.UpdatedAt,
	}, nil
}

// SetChart caches chart under its owner for ChartCacheTTL.
func (c *Cache) SetChart(ctx context.Context, chart *model.BirthChart) error {
	cached := cachedChart{
		ID:           chart.ID,
		UserID:       chart.UserID,
		BirthDate:    chart.Inputs.Date.Format(model.DateLayout),
		BirthTime:    chart.Inputs.Time.String(),
		Latitude:     chart.Inputs.Latitude,
		Longitude:    chart.Inputs.Longitude,
		Place:        chart.Inputs.Place,
		Timezone:     chart.Inputs.Timezone,
		Ascendant:    chart.Ascendant,
		SunSign:      chart.SunSign,
		MoonSign:     chart.MoonSign,
		Planets:      chart.Planets,
		Raag:         chart.Raag,
		RawChart:     chart.RawChart,
		Degraded:     chart.Degraded,
		CalculatedAt: chart.CalculatedAt,
		CreatedAt:    chart.CreatedAt,
		UpdatedAt:    chart.UpdatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal chart: %w", err)
	}

	return c.client.Set(ctx, chartCachePrefix+chart.UserID, data, ChartCacheTTL).Err()
}

// DeleteChart removes the cached chart for userID.
func (c *Cache) DeleteChart(ctx context.Context, userID string) error {
	return c.client.Del(ctx, chartCachePrefix+userID).Err()
}
