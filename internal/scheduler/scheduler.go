package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/dealfunnel/pkg/logger"
)

// Scheduler manages scheduled jobs
// ⭐ SSOT: background jobs are scheduled here only
type Scheduler struct {
	cron      *cron.Cron
	logger    *logger.Logger
	jobs      map[string]Job
	entries   map[string]cron.EntryID
	histories map[string]*history
	mu        sync.RWMutex

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration

	wg sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetries retries a failed run up to n times, delay apart
func WithRetries(n int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = n
		s.retryDelay = delay
	}
}

// WithJobTimeout bounds a single attempt
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// New creates a new scheduler. Runs are not retried unless WithRetries is given.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    log,
		jobs:      make(map[string]Job),
		entries:   make(map[string]cron.EntryID),
		histories: make(map[string]*history),
		timeout:   time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.entries[jobName] = id
	s.jobs[jobName] = job
	s.histories[jobName] = &history{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a job now, outside its schedule
func (s *Scheduler) RunJob(jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJob(job)
	}()
	return nil
}

// runJob executes a job with retry logic and records the outcome
func (s *Scheduler) runJob(job Job) {
	jobName := job.Name()
	run := Run{StartedAt: time.Now()}

	s.logger.WithField("job", jobName).Debug("Job started")

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		run.Attempts++

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		lastErr = job.Run(ctx)
		cancel()
		if lastErr == nil {
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     jobName,
			"attempt": run.Attempts,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	run.Duration = time.Since(run.StartedAt)
	if lastErr != nil {
		run.Error = lastErr.Error()
	}

	s.mu.Lock()
	if h, exists := s.histories[jobName]; exists {
		h.add(run)
	}
	s.mu.Unlock()

	log := s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"duration": run.Duration,
		"attempts": run.Attempts,
	})
	if run.OK() {
		log.Debug("Job completed successfully")
	} else {
		log.WithError(lastErr).Error("Job failed after all retries")
	}
}

// Status reports every job's recent runs and next scheduled time, sorted by name
func (s *Scheduler) Status() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]Status, 0, len(s.jobs))
	for jobName, job := range s.jobs {
		st := s.histories[jobName].status(job)
		if next := s.cron.Entry(s.entries[jobName]).Next; !next.IsZero() {
			st.NextRun = &next
		}
		statuses = append(statuses, st)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
