// Package graph mirrors accounts and their birth charts into Neo4j.
// PostgreSQL stays authoritative; the graph is a best-effort projection.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/astromusic/astromusic/internal/model"
)

// Config configures the Neo4j connection.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// Projector writes User, BirthChart and ZodiacSign nodes.
// A nil *Projector is valid and does nothing.
type Projector struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// New connects to Neo4j. It returns nil, nil when cfg.URI is empty.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Projector, error) {
	if cfg.URI == "" {
		return nil, nil
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = 20
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("init neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	p := &Projector{driver: driver, database: cfg.Database, logger: logger}
	p.ensureConstraints(ctx)
	return p, nil
}

// Ping checks Neo4j connectivity.
func (p *Projector) Ping(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.driver.VerifyConnectivity(ctx)
}

// Close releases the driver.
func (p *Projector) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.driver.Close(ctx)
}

// ProjectChart replaces the chart node of chart.UserID and links it to its
// ascendant, sun and moon signs.
func (p *Projector) ProjectChart(ctx context.Context, chart *model.BirthChart) error {
	if p == nil {
		return nil
	}
	return p.write(ctx, `
MERGE (u:User {id: $user_id})
MERGE (c:BirthChart {user_id: $user_id})
MERGE (u)-[:HAS_BIRTH_CHART]->(c)
SET c.id = $chart_id,
    c.suggested_raag = $raag,
    c.degraded = $degraded,
    c.updated_at = $updated_at
WITH c
OPTIONAL MATCH (c)-[old:HAS_ASCENDANT|SUN_IN|MOON_IN]->(:ZodiacSign)
DELETE old
WITH DISTINCT c
FOREACH (s IN CASE WHEN $ascendant = '' THEN [] ELSE [$ascendant] END |
    MERGE (z:ZodiacSign {name: s}) MERGE (c)-[:HAS_ASCENDANT]->(z))
FOREACH (s IN CASE WHEN $sun = '' THEN [] ELSE [$sun] END |
    MERGE (z:ZodiacSign {name: s}) MERGE (c)-[:SUN_IN]->(z))
FOREACH (s IN CASE WHEN $moon = '' THEN [] ELSE [$moon] END |
    MERGE (z:ZodiacSign {name: s}) MERGE (c)-[:MOON_IN]->(z))
`, chartParams(chart))
}

// RemoveChart deletes the chart node of userID and its sign links.
func (p *Projector) RemoveChart(ctx context.Context, userID string) error {
	if p == nil {
		return nil
	}
	return p.write(ctx, `
MATCH (c:BirthChart {user_id: $user_id})
DETACH DELETE c
`, map[string]any{"user_id": userID})
}

// RemoveUser deletes the user node and its chart.
func (p *Projector) RemoveUser(ctx context.Context, userID string) error {
	if p == nil {
		return nil
	}
	return p.write(ctx, `
OPTIONAL MATCH (c:BirthChart {user_id: $user_id})
DETACH DELETE c
WITH 1 AS done
OPTIONAL MATCH (u:User {id: $user_id})
DETACH DELETE u
`, map[string]any{"user_id": userID})
}

func (p *Projector) write(ctx context.Context, cypher string, params map[string]any) error {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: p.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j write: %w", err)
	}
	return nil
}

func (p *Projector) ensureConstraints(ctx context.Context) {
	statements := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT birth_chart_user_unique IF NOT EXISTS FOR (c:BirthChart) REQUIRE c.user_id IS UNIQUE`,
		`CREATE CONSTRAINT zodiac_sign_unique IF NOT EXISTS FOR (z:ZodiacSign) REQUIRE z.name IS UNIQUE`,
	}

	session := p.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: p.database,
	})
	defer session.Close(ctx)

	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			p.logger.Warn("neo4j schema init failed (continuing)", slog.String("error", err.Error()))
			return
		}
		_, _ = res.Consume(ctx)
	}
}

func chartParams(chart *model.BirthChart) map[string]any {
	return map[string]any{
		"user_id":    chart.UserID,
		"chart_id":   chart.ID,
		"raag":       chart.Raag,
		"degraded":   chart.Degraded,
		"updated_at": chart.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"ascendant":  chart.Ascendant.String(),
		"sun":        chart.SunSign.String(),
		"moon":       chart.MoonSign.String(),
	}
}
