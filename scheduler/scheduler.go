// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Cleaner deletes audit entries older than the given number of days.
type Cleaner interface {
	Cleanup(ctx context.Context, days int) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *log.Logger
}

func New(logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// ScheduleCleanup registers a retention job. spec is a standard five field
// cron expression or a descriptor such as "@daily".
func (s *Scheduler) ScheduleCleanup(spec string, days int, cleaner Cleaner) (cron.EntryID, error) {
	if days < 1 {
		return 0, fmt.Errorf("retention must be at least one day, got %d", days)
	}
	id, err := s.cron.AddFunc(spec, func() { s.runCleanup(cleaner, days) })
	if err != nil {
		return 0, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	s.logger.Printf("Activity cleanup scheduled %q keeping %d days", spec, days)
	return id, nil
}

func (s *Scheduler) runCleanup(cleaner Cleaner, days int) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := cleaner.Cleanup(ctx, days)
	if err != nil {
		s.logger.Printf("Activity cleanup failed: %v", err)
		return
	}
	s.logger.Printf("Activity cleanup removed %d entries", deleted)
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
