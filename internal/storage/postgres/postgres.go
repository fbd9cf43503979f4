// Package postgres archives battle reports in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// ApplicationName tags archive connections in pg_stat_activity.
const ApplicationName = "skirmish-archive"

// Archive is an open connection to the battle report store.
type Archive struct {
	pool *pgxpool.Pool
}

// Open connects to the report store described by cfg.
//
// Precondition: cfg must pass Validate.
// Postcondition: Returns an Archive whose database answered a ping, or a
// non-nil error with no connections left open.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Archive, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing archive dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s/%s: %w", cfg.Host, cfg.Name, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("archive %s/%s unreachable: %w", cfg.Host, cfg.Name, err)
	}
	return &Archive{pool: pool}, nil
}

// Reports returns the report repository backed by this archive.
func (a *Archive) Reports() *ReportRepository {
	return NewReportRepository(a.pool)
}

// DB exposes the pool for migrations and test setup.
func (a *Archive) DB() *pgxpool.Pool { return a.pool }

// Close releases every archive connection.
func (a *Archive) Close() { a.pool.Close() }
