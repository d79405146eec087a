package jobs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/config"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/logger"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

const defaultBatchSize = 500

// RecategorizationConfig configures the scheduled re-categorization job.
type RecategorizationConfig struct {
	Schedule  string // cron expression
	BatchSize int
	TimeZone  string
}

// NewRecategorizationConfigFromEnv builds the config from the environment
// with the compiled defaults filled in.
func NewRecategorizationConfigFromEnv() *RecategorizationConfig {
	schedule := os.Getenv("RECATEGORIZATION_SCHEDULE")
	if schedule == "" {
		schedule = config.DefaultRecategorizationSchedule
	}
	batchSize := defaultBatchSize
	if bs := os.Getenv("RECATEGORIZATION_BATCH_SIZE"); bs != "" {
		if parsed, err := strconv.Atoi(bs); err == nil && parsed > 0 {
			batchSize = parsed
		}
	}
	return &RecategorizationConfig{
		Schedule:  schedule,
		BatchSize: batchSize,
		TimeZone:  config.DefaultTimeZone,
	}
}

// RunRecategorizationScheduler starts the cron job that periodically re-runs
// the rule engine over uncategorized transactions. Returns the running cron
// so the caller can stop it on shutdown.
func RunRecategorizationScheduler(cfg *RecategorizationConfig, st *store.Store) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Invalid timezone %s, falling back to UTC: %v", cfg.TimeZone, err))
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		logger.GlobalLogger.LogAudit("Starting scheduled re-categorization run")
		if _, err := ProcessUncategorizedTransactions(st, cfg.BatchSize); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Re-categorization run failed: %v", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule re-categorization job: %w", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit(fmt.Sprintf("Re-categorization scheduler started: %s (%s)", cfg.Schedule, cfg.TimeZone))
	return c, nil
}
