package runs

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"lexharvest/internal/domain"
	"lexharvest/internal/timeutil"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo := NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.sqlite"))
	if err := repo.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRun(start, end string) *domain.HarvestRun {
	s, _ := timeutil.ParseDay(start)
	e, _ := timeutil.ParseDay(end)
	return &domain.HarvestRun{
		StartDate: s,
		EndDate:   e,
		Query:     "(crash or botsing)",
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestCreateAssignsID(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	run := testRun("01-01-2025", "31-01-2025")
	if err := repo.Create(run); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("no id assigned")
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	run := testRun("01-01-2025", "31-12-2025")
	if err := repo.Create(run); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.Get(run.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Query != run.Query || got.Status != domain.RunStatusRunning {
		t.Fatalf("got %+v", got)
	}
	if timeutil.FormatDay(got.StartDate) != "01-01-2025" ||
		timeutil.FormatDay(got.EndDate) != "31-12-2025" {
		t.Fatalf("dates = %v .. %v", got.StartDate, got.EndDate)
	}
	if got.CompletedAt != nil {
		t.Fatalf("completed_at = %v, want nil for a running run", got.CompletedAt)
	}
}

func TestUpdateFinalizesRun(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	run := testRun("01-01-2025", "02-01-2025")
	if err := repo.Create(run); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &now
	statsJSON, _ := json.Marshal(domain.HarvestStats{DaysProcessed: 2, TotalDownloaded: 17})
	run.Stats = statsJSON
	if err := repo.Update(run); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.Get(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.RunStatusSuccess || got.CompletedAt == nil {
		t.Fatalf("got %+v", got)
	}
	var stats domain.HarvestStats
	if err := json.Unmarshal(got.Stats, &stats); err != nil {
		t.Fatalf("stats not preserved: %v", err)
	}
	if stats.DaysProcessed != 2 || stats.TotalDownloaded != 17 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	for i, status := range []domain.RunStatus{
		domain.RunStatusSuccess, domain.RunStatusFailed, domain.RunStatusSuccess,
	} {
		run := testRun("01-01-2025", "02-01-2025")
		run.Status = status
		run.StartedAt = run.StartedAt.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(run); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d runs, want 3", len(all))
	}
	if all[0].StartedAt.Before(all[1].StartedAt) {
		t.Fatal("runs not ordered newest first")
	}

	failed, err := repo.List(0, string(domain.RunStatusFailed))
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Status != domain.RunStatusFailed {
		t.Fatalf("failed = %+v", failed)
	}

	limited, err := repo.List(2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d runs, want 2", len(limited))
	}
}

func TestOpenPicksBackendFromDSN(t *testing.T) {
	t.Parallel()

	if _, ok := Open("./runs.sqlite").(*SQLiteRepository); !ok {
		t.Fatal("file path did not select sqlite")
	}
	if _, ok := Open("postgres://localhost/harvest").(*PostgresRepository); !ok {
		t.Fatal("postgres:// did not select postgres")
	}
	if _, ok := Open("postgresql://localhost/harvest").(*PostgresRepository); !ok {
		t.Fatal("postgresql:// did not select postgres")
	}
}
