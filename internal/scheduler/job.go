package scheduler

import (
	"context"
	"time"
)

// Job is background work run on a cron schedule
// ⭐ SSOT: the job interface is defined here only
type Job interface {
	Name() string

	// Schedule is a cron expression with a leading seconds field
	// ("0 */5 * * * *") or a descriptor ("@every 1m", "@hourly")
	Schedule() string

	Run(ctx context.Context) error
}

// historyLimit bounds the runs kept per job
const historyLimit = 50

// Run is the outcome of one execution, retries included
type Run struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Error     string        `json:"error,omitempty"`
}

// OK reports whether the run succeeded
func (r Run) OK() bool {
	return r.Error == ""
}

// Status summarises the recent runs of one job
type Status struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	SuccessRate float64    `json:"success_rate"`
	LastRun     *Run       `json:"last_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

// history is a bounded log of runs, oldest first
type history struct {
	runs []Run
}

func (h *history) add(r Run) {
	h.runs = append(h.runs, r)
	if len(h.runs) > historyLimit {
		h.runs = h.runs[len(h.runs)-historyLimit:]
	}
}

// status folds the log into a Status for job
func (h *history) status(job Job) Status {
	s := Status{
		Name:     job.Name(),
		Schedule: job.Schedule(),
		Runs:     len(h.runs),
	}
	if len(h.runs) == 0 {
		return s
	}

	for i := range h.runs {
		run := h.runs[i]
		if !run.OK() {
			s.Failures++
			continue
		}
		started := run.StartedAt
		s.LastSuccess = &started
	}

	last := h.runs[len(h.runs)-1]
	s.LastRun = &last
	s.SuccessRate = float64(s.Runs-s.Failures) / float64(s.Runs)
	return s
}
