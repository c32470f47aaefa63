package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/semerproje/newswire/app/database"
	"github.com/semerproje/newswire/app/schedule"
)

type SyncScheduleTask struct {
	Task
	Config       *schedule.Config
	scheduleRepo database.ScheduleRepository
}

func NewSyncScheduleTask(scheduleName string, config *schedule.Config, scheduleRepo database.ScheduleRepository) *SyncScheduleTask {
	return &SyncScheduleTask{
		Task:         NewTask(TaskTypeSyncSchedule, scheduleName),
		Config:       config,
		scheduleRepo: scheduleRepo,
	}
}

func (t *SyncScheduleTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.scheduleRepo.UpsertSchedule(database.Schedule{
		Name:            t.Config.Name,
		IntervalMinutes: t.Config.IntervalMinutes,
		Categories:      t.Config.Categories,
		MaxItems:        t.Config.MaxItems,
		WindowHours:     t.Config.WindowHours,
		Language:        t.Config.Language,
		Enhance:         t.Config.Enhance,
		Active:          t.Config.IsActive(),
	})
	if err != nil {
		slog.Error("Task failed", "type", "SyncSchedule", "schedule", t.ScheduleName, "error", err)
		return fmt.Errorf("failed to sync schedule config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSchedule",
		"schedule", t.ScheduleName,
		"duration", t.GetDuration())

	return nil
}
