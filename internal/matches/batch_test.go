package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Samuelsenhet/m-k-sub001/internal/matching"
)

func newTestJob(repo Repository, workers int) *PoolJob {
	scorer := matching.NewScorer(matching.DefaultArchetypeCategories())
	job := NewPoolJob(repo, nil, matching.NewPoolGenerator(scorer), time.UTC, workers)
	job.seedFunc = func() int64 { return 42 }
	return job
}

func seedUsers(repo *fakeRepo, n int) {
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		c := matching.Candidate{
			UserID:              id,
			DisplayName:         "User " + id,
			Scores:              matching.Scores{EI: 50, SN: 40 + i*5, TF: 50, JP: 50, AT: 50},
			OnboardingCompleted: true,
		}
		repo.candidates = append(repo.candidates, c)
		repo.profiles[id] = &matching.Profile{Candidate: c}
	}
}

func TestPoolJobRun(t *testing.T) {
	repo := newFakeRepo()
	seedUsers(repo, 6)
	job := newTestJob(repo, 2)

	report, err := job.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if report.UsersScanned != 6 {
		t.Errorf("users scanned = %d, want 6", report.UsersScanned)
	}
	if report.PoolsUpserted != 6 {
		t.Errorf("pools upserted = %d, want 6", report.PoolsUpserted)
	}
	if report.UsersSkipped != 0 {
		t.Errorf("users skipped = %d, want 0", report.UsersSkipped)
	}

	date := time.Now().UTC().Format("2006-01-02")
	for _, c := range repo.candidates {
		snapshot, _ := repo.GetPoolSnapshot(context.Background(), c.UserID, date)
		if snapshot == nil {
			t.Fatalf("missing snapshot for user %s", c.UserID)
		}
		pool, err := snapshot.Candidates()
		if err != nil {
			t.Fatalf("corrupt snapshot for user %s: %v", c.UserID, err)
		}
		if len(pool) != 5 {
			t.Errorf("pool for %s has %d candidates, want 5", c.UserID, len(pool))
		}
		for _, entry := range pool {
			if entry.User.UserID == c.UserID {
				t.Errorf("user %s appears in own pool", c.UserID)
			}
		}
	}
}

func TestPoolJobSkipsBrokenUser(t *testing.T) {
	repo := newFakeRepo()
	seedUsers(repo, 3)
	// One candidate has no loadable profile; the rest must still succeed.
	delete(repo.profiles, "b")
	job := newTestJob(repo, 1)

	report, err := job.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.PoolsUpserted != 2 {
		t.Errorf("pools upserted = %d, want 2", report.PoolsUpserted)
	}
	if report.UsersSkipped != 1 {
		t.Errorf("users skipped = %d, want 1", report.UsersSkipped)
	}
}

func TestPoolJobLoadFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.loadCandidatesErr = errors.New("db down")
	job := newTestJob(repo, 1)

	if _, err := job.Run(context.Background(), 10); err == nil {
		t.Fatal("expected error when candidate loading fails")
	}
}

func TestPoolJobRerunReplacesSnapshots(t *testing.T) {
	repo := newFakeRepo()
	seedUsers(repo, 4)
	job := newTestJob(repo, 1)

	if _, err := job.Run(context.Background(), 10); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	report, err := job.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.PoolsUpserted != 4 {
		t.Errorf("rerun upserted %d pools, want 4", report.PoolsUpserted)
	}

	// Still exactly one snapshot per user and day
	if len(repo.snapshots) != 4 {
		t.Errorf("snapshot count = %d, want 4", len(repo.snapshots))
	}
}

func TestPoolJobAttachesPhotos(t *testing.T) {
	repo := newFakeRepo()
	seedUsers(repo, 3)
	repo.photos = map[string][]string{"b": {"photos/b1.jpg", "photos/b2.jpg"}}
	job := newTestJob(repo, 1)

	if _, err := job.Run(context.Background(), 10); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	date := time.Now().UTC().Format("2006-01-02")
	snapshot, _ := repo.GetPoolSnapshot(context.Background(), "a", date)
	if snapshot == nil {
		t.Fatal("missing snapshot")
	}
	pool, err := snapshot.Candidates()
	if err != nil {
		t.Fatalf("corrupt snapshot: %v", err)
	}
	for _, entry := range pool {
		if entry.User.UserID == "b" {
			if len(entry.User.Photos) != 2 {
				t.Errorf("photos for b = %v, want 2 refs", entry.User.Photos)
			}
			return
		}
	}
	t.Fatal("candidate b not found in pool")
}

func TestPoolJobRespectsBatchSize(t *testing.T) {
	repo := newFakeRepo()
	seedUsers(repo, 8)
	job := newTestJob(repo, 1)

	if _, err := job.Run(context.Background(), 3); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	date := time.Now().UTC().Format("2006-01-02")
	snapshot, _ := repo.GetPoolSnapshot(context.Background(), "a", date)
	if snapshot == nil {
		t.Fatal("missing snapshot")
	}
	pool, err := snapshot.Candidates()
	if err != nil {
		t.Fatalf("corrupt snapshot: %v", err)
	}
	if len(pool) != 3 {
		t.Errorf("pool size = %d, want 3", len(pool))
	}
}
