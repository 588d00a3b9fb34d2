// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/astromusic/astromusic/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 720720

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every application table and re-applies the migration
// files from internal/repository/migrations in order.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS birth_charts, users, schema_migrations CASCADE`); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(root, "internal", "repository", "migrations", "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		upSQL, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(file), err)
		}
		if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(file), err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an active test user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := ulid.Make().String()
	return &model.User{
		ID:           id,
		Email:        fmt.Sprintf("user-%s@example.com", id),
		Name:         "Test User",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaA",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestChart creates a chart for userID born in Mumbai.
func NewTestChart(t testing.TB, userID string) *model.BirthChart {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	sign := model.Leo
	degree := 12.5
	house := 1
	return &model.BirthChart{
		ID:     ulid.Make().String(),
		UserID: userID,
		Inputs: model.BirthInputs{
			Date:      time.Date(1990, time.July, 15, 0, 0, 0, 0, time.UTC),
			Time:      model.TimeOfDay{Hour: 6, Minute: 30},
			Latitude:  19.076,
			Longitude: 72.8777,
			Place:     "Mumbai",
			Timezone:  "Asia/Kolkata",
		},
		Ascendant: model.Leo,
		SunSign:   model.Cancer,
		MoonSign:  model.Pisces,
		Planets: []model.PlanetPosition{
			{Name: "Asc", Sign: &sign, Degree: &degree, House: &house},
		},
		Raag:         "Khamaj",
		RawChart:     `{"bodies":[]}`,
		CalculatedAt: now,
		UpdatedAt:    now,
	}
}
