package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/metrics"
	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/repository"
)

// ChartService owns the single birth chart of each account.
type ChartService struct {
	charts  ChartStore
	cache   ChartCache
	deriver *chart.Deriver
	graph   GraphProjector
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewChartService creates a new ChartService. cache and graph may be nil.
func NewChartService(
	charts ChartStore,
	cache ChartCache,
	deriver *chart.Deriver,
	graph GraphProjector,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *ChartService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if graph == nil {
		graph = noopProjector{}
	}
	return &ChartService{
		charts:  charts,
		cache:   cache,
		deriver: deriver,
		graph:   graph,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// GetForAccount returns the chart owned by userID.
func (s *ChartService) GetForAccount(ctx context.Context, userID string) (*model.BirthChart, error) {
	if s.cache != nil {
		cached, err := s.cache.GetChart(ctx, userID)
		if err != nil {
			s.logger.Warn("chart cache read failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		} else if cached != nil {
			s.metrics.IncChartCacheHit()
			return cached, nil
		}
		s.metrics.IncChartCacheMiss()
	}

	rec, err := s.charts.GetChartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrChartNotFound) {
			return nil, ErrChartNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetChart(ctx, rec); err != nil {
			s.logger.Warn("chart cache write failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
	}

	return rec, nil
}

// Upsert derives a chart from in and stores it as userID's chart, replacing
// any previous one. It performs one derivation and one write.
func (s *ChartService) Upsert(ctx context.Context, userID string, in BirthInput) (*model.BirthChart, error) {
	inputs, err := ParseBirthInput(in)
	if err != nil {
		return nil, err
	}

	deriv, err := s.deriver.Derive(ctx, inputs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &model.BirthChart{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Inputs:       inputs,
		Ascendant:    deriv.Ascendant,
		SunSign:      deriv.SunSign,
		MoonSign:     deriv.MoonSign,
		Planets:      deriv.Planets,
		Raag:         deriv.Raag,
		RawChart:     deriv.Raw,
		Degraded:     deriv.Degraded,
		CalculatedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.charts.UpsertChart(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to store birth chart: %w", err)
	}

	s.metrics.IncChartUpserted()
	s.invalidate(ctx, userID)
	if err := s.graph.ProjectChart(ctx, rec); err != nil {
		s.logger.Warn("graph projection failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	return rec, nil
}

// Delete removes userID's chart.
func (s *ChartService) Delete(ctx context.Context, userID string) error {
	if err := s.charts.DeleteChartByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrChartNotFound) {
			return ErrChartNotFound
		}
		return err
	}

	s.metrics.IncChartDeleted()
	s.invalidate(ctx, userID)
	if err := s.graph.RemoveChart(ctx, userID); err != nil {
		s.logger.Warn("graph removal failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	return nil
}

// Data returns the parsed view of userID's chart.
func (s *ChartService) Data(ctx context.Context, userID string) (*model.ChartData, error) {
	rec, err := s.GetForAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	table := s.deriver.Table()
	planets := rec.Planets
	if planets == nil {
		planets = []model.PlanetPosition{}
	}

	return &model.ChartData{
		Lagna:         rec.Ascendant,
		LagnaHindi:    table.LocalizedName(rec.Ascendant),
		SunSign:       rec.SunSign,
		SunSignHindi:  table.LocalizedName(rec.SunSign),
		MoonSign:      rec.MoonSign,
		MoonSignHindi: table.LocalizedName(rec.MoonSign),
		Planets:       planets,
		Houses:        []any{},
		SuggestedRaag: rec.Raag,
	}, nil
}

func (s *ChartService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteChart(ctx, userID); err != nil {
		s.logger.Warn("chart cache invalidation failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}
