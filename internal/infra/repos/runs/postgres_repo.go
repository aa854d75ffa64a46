package runs

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"lexharvest/internal/domain"
	"lexharvest/internal/timeutil"
)

type PostgresRepository struct {
	dsn string
	db  *sql.DB
}

func NewPostgresRepository(dsn string) *PostgresRepository {
	return &PostgresRepository{dsn: strings.TrimSpace(dsn)}
}

func (r *PostgresRepository) DB() *sql.DB { return r.db }

func (r *PostgresRepository) Init() error {
	if r.dsn == "" {
		return fmt.Errorf("runs db dsn is required")
	}
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	r.db = db

	_, err = r.db.Exec(`
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		query TEXT,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		stats JSONB,
		error TEXT
	)`)
	return err
}

func (r *PostgresRepository) Create(run *domain.HarvestRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.Format(time.RFC3339)
	}

	query := `
		INSERT INTO harvest_runs (
			id, start_date, end_date, query, status, started_at, completed_at, stats, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::jsonb, $9)
	`

	_, err := r.db.Exec(query,
		run.ID,
		timeutil.FormatDay(run.StartDate), timeutil.FormatDay(run.EndDate),
		run.Query, run.Status,
		run.StartedAt.Format(time.RFC3339), completedAt,
		string(run.Stats), run.Error,
	)
	return err
}

func (r *PostgresRepository) Update(run *domain.HarvestRun) error {
	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.Format(time.RFC3339)
	}

	query := `
		UPDATE harvest_runs SET
			status = $1, completed_at = $2, stats = NULLIF($3, '')::jsonb, error = $4
		WHERE id = $5
	`

	_, err := r.db.Exec(query, run.Status, completedAt, string(run.Stats), run.Error, run.ID)
	return err
}

func (r *PostgresRepository) Get(id string) (*domain.HarvestRun, error) {
	query := `
		SELECT id, start_date, end_date, query, status, started_at, completed_at, stats::text, error
		FROM harvest_runs WHERE id = $1
	`
	return scanRun(r.db.QueryRow(query, id))
}

func (r *PostgresRepository) List(limit int, status string) ([]*domain.HarvestRun, error) {
	query := `
		SELECT id, start_date, end_date, query, status, started_at, completed_at, stats::text, error
		FROM harvest_runs
	`

	args := make([]interface{}, 0)
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.HarvestRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
