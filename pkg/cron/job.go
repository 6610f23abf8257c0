// Package cron runs periodic maintenance tasks.
package cron

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job runs a function on a cron schedule. A run that starts while the
// previous one is still in progress is skipped.
type Job struct {
	name     string
	cron     *cron.Cron
	entry    cron.EntryID
	fn       func() error
	schedule string
	logger   *zap.Logger

	mutex     sync.RWMutex
	isRunning bool
}

// NewJob schedules fn. The schedule accepts six-field expressions with
// seconds as well as descriptors such as "@every 1m". The job does not fire
// until Start is called.
func NewJob(name, schedule string, fn func() error, logger *zap.Logger) (*Job, error) {
	j := &Job{
		name:     name,
		cron:     cron.New(cron.WithSeconds()),
		fn:       fn,
		schedule: schedule,
		logger:   logger.With(zap.String("job", name)),
	}

	entryID, err := j.cron.AddFunc(schedule, j.Run)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q for job %s: %w", schedule, name, err)
	}
	j.entry = entryID

	return j, nil
}

func (j *Job) Start() {
	j.cron.Start()
}

// Run executes the job once unless a run is already in progress.
func (j *Job) Run() {
	j.mutex.Lock()
	if j.isRunning {
		j.mutex.Unlock()
		j.logger.Debug("job already in progress, skipping")
		return
	}
	j.isRunning = true
	j.mutex.Unlock()

	defer func() {
		j.mutex.Lock()
		j.isRunning = false
		j.mutex.Unlock()
	}()

	start := time.Now()
	if err := j.fn(); err != nil {
		j.logger.Error("job failed", zap.Error(err))
		return
	}
	j.logger.Debug("job completed", zap.Duration("duration", time.Since(start)))
}

// Stop halts the scheduler and waits for a running job to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("job stopped")
}

// NextRun returns the next scheduled run time, or the zero time when the
// scheduler is not started.
func (j *Job) NextRun() time.Time {
	return j.cron.Entry(j.entry).Next
}

func (j *Job) IsRunning() bool {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return j.isRunning
}

func (j *Job) Schedule() string {
	return j.schedule
}
