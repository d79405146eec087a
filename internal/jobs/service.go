package jobs

import (
	"github.com/robfig/cron/v3"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/serviceiface"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

// SchedulerService owns the re-categorization cron as a managed service.
type SchedulerService struct {
	config map[string]interface{}
	store  *store.Store
	cron   *cron.Cron
}

func NewSchedulerService(cfg map[string]interface{}, st *store.Store) serviceiface.Service {
	return &SchedulerService{config: cfg, store: st}
}

func (s *SchedulerService) Name() string {
	return "scheduler"
}

func (s *SchedulerService) Start() error {
	cfg := NewRecategorizationConfigFromEnv()
	if schedule, ok := s.config["schedule"].(string); ok && schedule != "" {
		cfg.Schedule = schedule
	}
	if bs, ok := s.config["batch_size"].(int); ok && bs > 0 {
		cfg.BatchSize = bs
	}

	c, err := RunRecategorizationScheduler(cfg, s.store)
	if err != nil {
		return err
	}
	s.cron = c
	return nil
}

func (s *SchedulerService) Stop() error {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	return nil
}
