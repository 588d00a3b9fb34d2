package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/metrics"
	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/repository"
)

// AccountService manages accounts and their sessions.
type AccountService struct {
	users   UserStore
	charts  ChartStore
	cache   ChartCache
	revoker TokenRevoker
	graph   GraphProjector
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// AccountDeps groups the collaborators of an AccountService.
// Cache, Revoker and Graph are optional.
type AccountDeps struct {
	Users   UserStore
	Charts  ChartStore
	Cache   ChartCache
	Revoker TokenRevoker
	Graph   GraphProjector
	Hasher  *auth.PasswordHasher
	Tokens  *auth.TokenIssuer
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(deps AccountDeps) *AccountService {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoop()
	}
	if deps.Graph == nil {
		deps.Graph = noopProjector{}
	}
	return &AccountService{
		users:   deps.Users,
		charts:  deps.Charts,
		cache:   deps.Cache,
		revoker: deps.Revoker,
		graph:   deps.Graph,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     time.Now,
	}
}

// CreateAccountInput is the input for Create.
type CreateAccountInput struct {
	Email     string
	Name      string
	Password  string
	Superuser bool
}

// Profile is an account with its chart-existence flag.
type Profile struct {
	*model.User
	HasBirthChart bool `json:"has_birth_chart"`
}

// UpdateAccountInput holds the fields to change. Nil fields are left alone.
type UpdateAccountInput struct {
	Email    *string
	Name     *string
	Password *string
}

// Create registers a new active account.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*model.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  input.Superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// The unique constraint catches registrations racing past the pre-check.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.metrics.IncAccountCreated()
	s.logger.Info("account created", slog.String("user_id", user.ID))

	return user, nil
}

// Authenticate checks credentials. Unknown email, wrong password and
// inactive account all return ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		s.hasher.VerifyDummy(password)
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
	if !ok || !user.IsActive {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates and issues a token pair.
func (s *AccountService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(user.ID, user.IsSuperuser)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked so it cannot be used twice.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		fresh, err := s.revoker.RevokeRefreshToken(ctx, claims.ID, s.remaining(claims))
		if err != nil {
			return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		if !fresh {
			s.logger.Warn("revoked refresh token presented", slog.String("user_id", user.ID))
			return nil, ErrInvalidToken
		}
	}

	return s.tokens.Issue(user.ID, user.IsSuperuser)
}

// Logout revokes a refresh token. Revoking an already revoked token succeeds.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Parse(refreshToken, auth.TypeRefresh)
	if err != nil {
		return ErrInvalidToken
	}
	if s.revoker == nil {
		return nil
	}
	if _, err := s.revoker.RevokeRefreshToken(ctx, claims.ID, s.remaining(claims)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// AuthenticateAccess validates an access token and loads its principal.
func (s *AccountService) AuthenticateAccess(ctx context.Context, accessToken string) (*model.AuthContext, error) {
	claims, err := s.tokens.Parse(accessToken, auth.TypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &model.AuthContext{
		UserID:      user.ID,
		TokenID:     claims.ID,
		IsSuperuser: user.IsSuperuser,
	}, nil
}

// Get returns an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the account with whether it owns a birth chart.
func (s *AccountService) Profile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.charts.ChartExists(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, HasBirthChart: exists}, nil
}

// Update applies a partial update.
func (s *AccountService) Update(ctx context.Context, id string, input UpdateAccountInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}

	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
				return nil, ErrEmailExists
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables an account.
func (s *AccountService) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	user.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("account activation changed", slog.String("user_id", id), slog.Bool("is_active", active))
	return user, nil
}

// Delete removes an account. Its chart goes with it.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.metrics.IncAccountDeleted()
	if s.cache != nil {
		if err := s.cache.DeleteChart(ctx, id); err != nil {
			s.logger.Warn("chart cache invalidation failed", slog.String("user_id", id), slog.String("error", err.Error()))
		}
	}
	if err := s.graph.RemoveUser(ctx, id); err != nil {
		s.logger.Warn("graph removal failed", slog.String("user_id", id), slog.String("error", err.Error()))
	}

	return nil
}

func (s *AccountService) save(ctx context.Context, user *model.User) error {
	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return ErrEmailExists
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *AccountService) activeUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AccountService) remaining(claims *auth.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(s.now())
}
