package tasks

import (
	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/schedule"
	"github.com/reelsync/reelsync/internal/scheduler"
)

const SyncTaskID = "calendar-sync"

// RegisterSyncTask registers the calendar sync run with the scheduler.
func RegisterSyncTask(sched *scheduler.Scheduler, service *schedule.Service, cfg *config.SyncConfig) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:         SyncTaskID,
		Name:       "Calendar Sync",
		Cron:       cfg.Cron,
		RunOnStart: cfg.RunOnStart,
		Func:       service.Run,
	})
}
