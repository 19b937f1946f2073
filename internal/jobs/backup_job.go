package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BackupJobName is the name of the scheduled database backup job.
const BackupJobName = "db_backup"

// BackupRunner is the part of the backup manager the job needs.
// The interface keeps the jobs package from importing backup directly.
type BackupRunner interface {
	Run(ctx context.Context) error
}

// BackupJob snapshots the database on the configured cron schedule.
type BackupJob struct {
	runner  BackupRunner
	logger  *zap.Logger
	timeout time.Duration
}

func NewBackupJob(runner BackupRunner, logger *zap.Logger, timeout time.Duration) *BackupJob {
	return &BackupJob{
		runner:  runner,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one backup pass. Called by the scheduler.
func (j *BackupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.runner.Run(ctx); err != nil {
		j.logger.Error("database backup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	j.logger.Info("database backup finished",
		zap.Duration("duration", time.Since(start)))
}
