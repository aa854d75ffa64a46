package runs

import (
	"database/sql"
	"encoding/json"
	"time"

	"lexharvest/internal/domain"
	"lexharvest/internal/timeutil"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*domain.HarvestRun, error) {
	var run domain.HarvestRun
	var startDateStr, endDateStr, startedAtStr string
	var queryStr, completedAtStr, statsStr, errorStr sql.NullString

	err := row.Scan(
		&run.ID, &startDateStr, &endDateStr, &queryStr,
		&run.Status, &startedAtStr, &completedAtStr, &statsStr, &errorStr,
	)
	if err != nil {
		return nil, err
	}

	run.StartDate, _ = timeutil.ParseDay(startDateStr)
	run.EndDate, _ = timeutil.ParseDay(endDateStr)
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAtStr)
	if queryStr.Valid {
		run.Query = queryStr.String
	}
	if completedAtStr.Valid {
		t, _ := time.Parse(time.RFC3339, completedAtStr.String)
		run.CompletedAt = &t
	}
	if statsStr.Valid && statsStr.String != "" {
		run.Stats = json.RawMessage(statsStr.String)
	}
	if errorStr.Valid {
		run.Error = errorStr.String
	}
	return &run, nil
}
