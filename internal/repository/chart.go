package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/astromusic/astromusic/internal/model"
)

// ErrChartNotFound is returned when a user has no birth chart.
var ErrChartNotFound = errors.New("birth chart not found")

const chartColumns = `
	id, user_id, birth_date, birth_time, latitude, longitude, place, timezone,
	ascendant, sun_sign, moon_sign, planets, suggested_raag, raw_chart, degraded,
	calculated_at, created_at, updated_at`

// UpsertChart creates the user's chart or fully replaces the existing one in a
// single statement. On replace the row keeps its id and created_at. The
// stored row is written back into chart.
func (r *Repository) UpsertChart(ctx context.Context, chart *model.BirthChart) error {
	positions := chart.Planets
	if positions == nil {
		positions = []model.PlanetPosition{}
	}
	planets, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to encode planets: %w", err)
	}

	query := `
		INSERT INTO birth_charts (
			id, user_id, birth_date, birth_time, latitude, longitude, place, timezone,
			ascendant, sun_sign, moon_sign, planets, suggested_raag, raw_chart, degraded,
			calculated_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		ON CONFLICT (user_id) DO UPDATE SET
			birth_date     = EXCLUDED.birth_date,
			birth_time     = EXCLUDED.birth_time,
			latitude       = EXCLUDED.latitude,
			longitude      = EXCLUDED.longitude,
			place          = EXCLUDED.place,
			timezone       = EXCLUDED.timezone,
			ascendant      = EXCLUDED.ascendant,
			sun_sign       = EXCLUDED.sun_sign,
			moon_sign      = EXCLUDED.moon_sign,
			planets        = EXCLUDED.planets,
			suggested_raag = EXCLUDED.suggested_raag,
			raw_chart      = EXCLUDED.raw_chart,
			degraded       = EXCLUDED.degraded,
			calculated_at  = EXCLUDED.calculated_at,
			updated_at     = EXCLUDED.updated_at
		RETURNING ` + chartColumns

	row := r.pool.QueryRow(ctx, query,
		chart.ID,
		chart.UserID,
		chart.Inputs.Date,
		chart.Inputs.Time.String(),
		chart.Inputs.Latitude,
		chart.Inputs.Longitude,
		chart.Inputs.Place,
		chart.Inputs.Timezone,
		nullableSign(chart.Ascendant),
		nullableSign(chart.SunSign),
		nullableSign(chart.MoonSign),
		planets,
		chart.Raag,
		chart.RawChart,
		chart.Degraded,
		chart.CalculatedAt,
		chart.UpdatedAt,
	)

	stored, err := scanChart(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to upsert birth chart: %w", err)
	}

	*chart = *stored
	return nil
}

// GetChartByUserID retrieves the chart owned by userID.
func (r *Repository) GetChartByUserID(ctx context.Context, userID string) (*model.BirthChart, error) {
	query := `SELECT ` + chartColumns + ` FROM birth_charts WHERE user_id = $1`

	chart, err := scanChart(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChartNotFound
		}
		return nil, fmt.Errorf("failed to get birth chart: %w", err)
	}

	return chart, nil
}

// ChartExists reports whether userID owns a chart.
func (r *Repository) ChartExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM birth_charts WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check birth chart: %w", err)
	}
	return exists, nil
}

// DeleteChartByUserID removes the chart owned by userID.
func (r *Repository) DeleteChartByUserID(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM birth_charts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete birth chart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChartNotFound
	}
	return nil
}

func scanChart(row pgx.Row) (*model.BirthChart, error) {
	var (
		chart                model.BirthChart
		birthTime            string
		ascendant, sun, moon *string
		planets              []byte
	)

	err := row.Scan(
		&chart.ID,
		&chart.UserID,
		&chart.Inputs.Date,
		&birthTime,
		&chart.Inputs.Latitude,
		&chart.Inputs.Longitude,
		&chart.Inputs.Place,
		&chart.Inputs.Timezone,
		&ascendant,
		&sun,
		&moon,
		&planets,
		&chart.Raag,
		&chart.RawChart,
		&chart.Degraded,
		&chart.CalculatedAt,
		&chart.CreatedAt,
		&chart.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	chart.Inputs.Time, err = model.ParseTimeOfDay(birthTime)
	if err != nil {
		return nil, fmt.Errorf("stored birth time: %w", err)
	}
	chart.Ascendant = signValue(ascendant)
	chart.SunSign = signValue(sun)
	chart.MoonSign = signValue(moon)

	if err := json.Unmarshal(planets, &chart.Planets); err != nil {
		return nil, fmt.Errorf("decode planets: %w", err)
	}
	if chart.Planets == nil {
		chart.Planets = []model.PlanetPosition{}
	}

	return &chart, nil
}

func nullableSign(s model.Sign) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

func signValue(s *string) model.Sign {
	if s == nil {
		return ""
	}
	return model.Sign(*s)
}
