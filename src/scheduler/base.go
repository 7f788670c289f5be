package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"portfolio-api/src/utils"
)

// ScheduledTask runs a job on a cron expression until cancelled.
type ScheduledTask struct {
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
}

// NewScheduledTask registers taskFunc under the given cron expression and
// starts the scheduler.
func NewScheduledTask(ctx context.Context, name, cronSpec string, taskFunc func(context.Context) error) (*ScheduledTask, error) {
	c := cron.New()
	cancel := make(chan struct{})
	task := &ScheduledTask{
		cron:   c,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
		}

		logger := utils.LoggerFromContext(ctx).WithField("task", name)
		logger.Info("scheduled task starting")
		if err := taskFunc(ctx); err != nil {
			logger.WithError(err).Error("scheduled task failed")
			return
		}
		logger.Info("scheduled task completed")
	})
	if err != nil {
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	close(s.cancel)
}
