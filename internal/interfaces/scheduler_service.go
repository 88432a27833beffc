package interfaces

import "time"

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name        string
	Schedule    string
	Description string
	LastRun     *time.Time
	NextRun     *time.Time
	IsRunning   bool
	LastError   string
}

// SchedulerService runs maintenance jobs on cron schedules
type SchedulerService interface {
	// RegisterJob adds a job. Registering the same name twice is an error.
	RegisterJob(name string, schedule string, description string, handler func() error) error

	// Start begins running registered jobs on their schedules
	Start() error

	// Stop halts the scheduler and waits for running jobs to finish
	Stop() error

	// IsRunning returns true if the scheduler is active
	IsRunning() bool

	// TriggerJob runs a job immediately, outside its schedule
	TriggerJob(name string) error

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*JobStatus, error)

	// GetAllJobStatuses returns all job statuses
	GetAllJobStatuses() map[string]*JobStatus
}
