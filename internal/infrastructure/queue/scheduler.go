package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/shared"
)

// overdueReportCron runs the report generation nightly at 02:00 UTC.
const overdueReportCron = "0 2 * * *"

func NewScheduler(redisOpt asynq.RedisClientOpt) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	_, err := scheduler.Register(
		overdueReportCron,
		asynq.NewTask(shared.TaskOverdueReport, nil),
		asynq.Queue(shared.QueueReports),
	)
	if err != nil {
		return nil, fmt.Errorf("register overdue report task: %w", err)
	}

	return scheduler, nil
}
