package service

import (
	"context"
	"time"

	"github.com/astromusic/astromusic/internal/model"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ChartStore persists birth charts.
type ChartStore interface {
	UpsertChart(ctx context.Context, chart *model.BirthChart) error
	GetChartByUserID(ctx context.Context, userID string) (*model.BirthChart, error)
	ChartExists(ctx context.Context, userID string) (bool, error)
	DeleteChartByUserID(ctx context.Context, userID string) error
}

// ChartCache is a read-through cache of charts keyed by owner.
type ChartCache interface {
	GetChart(ctx context.Context, userID string) (*model.BirthChart, error)
	SetChart(ctx context.Context, chart *model.BirthChart) error
	DeleteChart(ctx context.Context, userID string) error
}

// TokenRevoker remembers used refresh tokens.
type TokenRevoker interface {
	RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// GraphProjector mirrors accounts and charts into a graph store.
type GraphProjector interface {
	ProjectChart(ctx context.Context, chart *model.BirthChart) error
	RemoveChart(ctx context.Context, userID string) error
	RemoveUser(ctx context.Context, userID string) error
}

type noopProjector struct{}

func (noopProjector) ProjectChart(context.Context, *model.BirthChart) error { return nil }
func (noopProjector) RemoveChart(context.Context, string) error             { return nil }
func (noopProjector) RemoveUser(context.Context, string) error              { return nil }
