package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API server to manage background
// ingestion processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, docRepo, scheduleRepo, gateway, classifier, detector, enhancer, guard)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewIngestTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
