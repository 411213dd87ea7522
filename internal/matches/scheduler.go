package matches

import (
	"context"
	"errors"
	"log"
	"time"
)

// Scheduler runs the daily pool generation at a fixed local wall-clock
// time. All times are evaluated in the configured match timezone so the
// "day" boundary matches the delivery date.
type Scheduler struct {
	job       *PoolJob
	loc       *time.Location
	hour      int
	minute    int
	batchSize int
}

func NewScheduler(job *PoolJob, loc *time.Location, hour, minute, batchSize int) *Scheduler {
	return &Scheduler{
		job:       job,
		loc:       loc,
		hour:      hour,
		minute:    minute,
		batchSize: batchSize,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runDaily(ctx)
}

func (s *Scheduler) runDaily(ctx context.Context) {
	for {
		now := time.Now().In(s.loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if _, err := s.job.Run(ctx, s.batchSize); err != nil {
				if errors.Is(err, ErrPoolJobRunning) {
					log.Printf("Scheduled pool generation skipped: %v", err)
				} else {
					log.Printf("Scheduled pool generation failed: %v", err)
				}
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
