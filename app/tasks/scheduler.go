package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/semerproje/newswire/app/cfg"
	"github.com/semerproje/newswire/app/classify"
	"github.com/semerproje/newswire/app/database"
	"github.com/semerproje/newswire/app/dedup"
	"github.com/semerproje/newswire/app/schedule"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	docRepo      database.DocumentRepository
	scheduleRepo database.ScheduleRepository
	configCache  *schedule.ConfigCache
	gateway      Gateway
	classifier   *classify.Classifier
	detector     *dedup.Detector
	dedupWindow  time.Duration
	enhancer     Enhancer
	guard        *RunGuard
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(configCache *schedule.ConfigCache, docRepo database.DocumentRepository,
	scheduleRepo database.ScheduleRepository, gateway Gateway, classifier *classify.Classifier,
	detector *dedup.Detector, enhancer Enhancer, guard *RunGuard) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		docRepo:      docRepo,
		scheduleRepo: scheduleRepo,
		configCache:  configCache,
		gateway:      gateway,
		classifier:   classifier,
		detector:     detector,
		dedupWindow:  time.Duration(cfg.DedupWindowHours) * time.Hour,
		enhancer:     enhancer,
		guard:        guard,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No schedule configurations found")
		return
	}

	slog.Debug("Syncing schedule configurations", "count", len(configs))

	for _, config := range configs {
		syncTask := NewSyncScheduleTask(config.Name, config, s.scheduleRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncScheduleTask", "schedule", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	due, err := s.scheduleRepo.GetDueSchedules()
	if err != nil {
		slog.Warn("Failed to get due schedules", "error", err)
		return
	}
	if len(due) == 0 {
		slog.Debug("No schedules due for ingestion")
		return
	}

	slog.Debug("Enqueueing due schedules", "count", len(due))

	for _, sched := range due {
		config, err := s.configCache.GetConfig(sched.Name)
		if err != nil {
			slog.Warn("Schedule has no configuration, skipping", "schedule", sched.Name, "error", err)
			continue
		}

		ingestTask := NewIngestTask(config.Name, config, s.gateway, s.classifier, s.detector, s.dedupWindow, s.enhancer, s.docRepo, s.scheduleRepo, s.guard)
		if err := s.EnqueueTask(ingestTask); err != nil {
			slog.Warn("Failed to enqueue IngestTask", "schedule", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if !retryable(err) {
			slog.Error("Task failed with non-retryable error", "type", string(task.GetType()), "id", task.GetID(), "error", err)
			return
		}

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "schedule", task.GetScheduleName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// Tracked in the WaitGroup so Stop waits for pending retries
			// before closing the queue.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-time.After(retryDelay):
				}
				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
