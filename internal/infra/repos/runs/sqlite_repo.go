package runs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"lexharvest/internal/domain"
	"lexharvest/internal/timeutil"
)

type SQLiteRepository struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{dbPath: dbPath}
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }

func (r *SQLiteRepository) Init() error {
	if dir := filepath.Dir(r.dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create runs db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	r.db = db

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		query TEXT,
		status TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		stats TEXT,
		error TEXT
	)`

	_, err = r.db.Exec(createTableSQL)
	return err
}

func (r *SQLiteRepository) Create(run *domain.HarvestRun) error {
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
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

func (r *SQLiteRepository) Update(run *domain.HarvestRun) error {
	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.Format(time.RFC3339)
	}

	query := `
		UPDATE harvest_runs SET
			status = ?, completed_at = ?, stats = ?, error = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, run.Status, completedAt, string(run.Stats), run.Error, run.ID)
	return err
}

func (r *SQLiteRepository) Get(id string) (*domain.HarvestRun, error) {
	query := `
		SELECT id, start_date, end_date, query, status, started_at, completed_at, stats, error
		FROM harvest_runs WHERE id = ?
	`
	return scanRun(r.db.QueryRow(query, id))
}

func (r *SQLiteRepository) List(limit int, status string) ([]*domain.HarvestRun, error) {
	query := `
		SELECT id, start_date, end_date, query, status, started_at, completed_at, stats, error
		FROM harvest_runs
	`

	args := make([]interface{}, 0)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
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

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
