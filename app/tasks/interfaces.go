package tasks

// TaskSchedulerInterface is the worker pool the pollers hand background work to.
//
//	scheduler := NewScheduler(workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewDispatchAlertTask(dispatcher, alert))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
