// Package runs stores the harvest run journal: one row per invocation of the
// harvest command, beside the per-day CSV ledger.
package runs

import (
	"strings"

	"lexharvest/internal/domain"
)

// Repository persists harvest runs.
type Repository interface {
	Init() error
	Create(run *domain.HarvestRun) error
	Update(run *domain.HarvestRun) error
	Get(id string) (*domain.HarvestRun, error)
	List(limit int, status string) ([]*domain.HarvestRun, error)
	Close() error
}

// Open picks a backend from the DSN: postgres:// selects Postgres, anything
// else is treated as a SQLite file path.
func Open(dsn string) Repository {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgresRepository(dsn)
	}
	return NewSQLiteRepository(dsn)
}
