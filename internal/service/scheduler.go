package service

import (
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based jobs. Entry handles are returned
// to callers so installed triggers can be found and cancelled later.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Schedule registers a job for the given cron spec (seconds field
// first, CRON_TZ prefix honored).
func (s *SchedulerService) Schedule(spec string, job func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, job)
}

// Remove cancels a previously scheduled job.
func (s *SchedulerService) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
