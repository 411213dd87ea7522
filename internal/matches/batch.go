package matches

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Samuelsenhet/m-k-sub001/internal/matching"
)

// ErrPoolJobRunning is returned when a batch run for the same day is
// already in flight on this or another instance.
var ErrPoolJobRunning = errors.New("pool generation already running for this date")

const poolJobLockTTL = 30 * time.Minute

// PoolJob generates the daily match pool for every onboarded user. One run
// per calendar day; reruns replace existing snapshots.
type PoolJob struct {
	repo     Repository
	redis    *redis.Client
	gen      *matching.PoolGenerator
	loc      *time.Location
	workers  int
	seedFunc func() int64
}

func NewPoolJob(repo Repository, redisClient *redis.Client, gen *matching.PoolGenerator, loc *time.Location, workers int) *PoolJob {
	if workers < 1 {
		workers = 1
	}
	return &PoolJob{
		repo:     repo,
		redis:    redisClient,
		gen:      gen,
		loc:      loc,
		workers:  workers,
		seedFunc: func() int64 { return time.Now().UnixNano() },
	}
}

// Run executes one batch generation pass for today's date.
func (j *PoolJob) Run(ctx context.Context, batchSize int) (*PoolJobReport, error) {
	date := time.Now().In(j.loc).Format("2006-01-02")

	if j.redis != nil {
		lockKey := "match_pools:job:" + date
		ok, err := j.redis.SetNX(ctx, lockKey, "1", poolJobLockTTL).Result()
		if err != nil {
			// Redis being down must not stop the batch; the snapshot upsert
			// is idempotent anyway.
			log.Printf("pool job: redis lock unavailable, continuing: %v", err)
		} else if !ok {
			return nil, ErrPoolJobRunning
		}
		defer j.redis.Del(context.Background(), lockKey)
	}

	start := time.Now()
	report, err := j.generateAll(ctx, date, batchSize)
	if err != nil {
		RecordPoolJobRun("error", time.Since(start))
		return nil, err
	}
	RecordPoolJobRun("success", time.Since(start))
	log.Printf("pool job: date=%s users=%d pools=%d skipped=%d in %s",
		report.Date, report.UsersScanned, report.PoolsUpserted, report.UsersSkipped, time.Since(start))
	return report, nil
}

func (j *PoolJob) generateAll(ctx context.Context, date string, batchSize int) (*PoolJobReport, error) {
	candidates, err := j.repo.LoadCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	photos, err := j.repo.LoadPhotos(ctx)
	if err != nil {
		// Pools without photo refs still render with the avatar fallback.
		log.Printf("pool job: photos unavailable, continuing: %v", err)
	}
	for i := range candidates {
		candidates[i].Photos = photos[candidates[i].UserID]
	}

	previousDate := previousDay(date)
	delivered, err := j.repo.GetDeliveredUserIDs(ctx, previousDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivered sets: %w", err)
	}

	report := &PoolJobReport{Date: date, UsersScanned: len(candidates), BatchSize: batchSize}

	jobs := make(chan matching.Candidate)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < j.workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for c := range jobs {
				ok := j.generateOne(ctx, c.UserID, candidates, date, batchSize, delivered[c.UserID], rng)
				mu.Lock()
				if ok {
					report.PoolsUpserted++
				} else {
					report.UsersSkipped++
				}
				mu.Unlock()
			}
		}(j.seedFunc())
	}

	for _, c := range candidates {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()

	return report, nil
}

// generateOne builds and stores one user's pool. Per-user failures are
// logged and skipped so a single bad profile cannot sink the whole run.
func (j *PoolJob) generateOne(
	ctx context.Context,
	userID string,
	candidates []matching.Candidate,
	date string,
	batchSize int,
	previousIDs map[string]bool,
	rng *rand.Rand,
) bool {
	profile, err := j.repo.LoadProfile(ctx, userID)
	if err != nil {
		log.Printf("pool job: skipping user %s: %v", userID, err)
		return false
	}

	pool := j.gen.Generate(*profile, candidates, batchSize, previousIDs, rng)
	if len(pool) == 0 {
		log.Printf("pool job: no eligible candidates for user %s", userID)
		return false
	}

	if err := j.repo.UpsertPoolSnapshot(ctx, userID, date, pool); err != nil {
		log.Printf("pool job: failed to store pool for user %s: %v", userID, err)
		return false
	}
	RecordPoolSize(len(pool))
	return true
}

func previousDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}
