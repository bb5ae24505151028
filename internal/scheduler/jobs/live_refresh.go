package jobs

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/pkg/logger"
)

// Refresher rebuilds a funnel view from fresh backend data
type Refresher interface {
	Refresh(ctx context.Context, dateKey string) contracts.FunnelView
}

// LiveHub receives refreshed views and knows which dates are being watched
type LiveHub interface {
	Broadcast(view contracts.FunnelView)
	Dates() []string
	Subscribers(date string) int
}

// LiveRefreshJobName is the scheduler name of LiveRefreshJob
const LiveRefreshJobName = "live_refresh"

// LiveRefreshJob re-fetches today's funnel, plus any date a live page is
// watching, and pushes the result to subscribers
type LiveRefreshJob struct {
	funnel   Refresher
	hub      LiveHub
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewLiveRefreshJob creates a new live refresh job
func NewLiveRefreshJob(funnel Refresher, hub LiveHub, schedule string, now func() time.Time, log *logger.Logger) *LiveRefreshJob {
	if now == nil {
		now = time.Now
	}
	return &LiveRefreshJob{
		funnel:   funnel,
		hub:      hub,
		schedule: schedule,
		now:      now,
		logger:   log,
	}
}

// Name returns the job name
func (j *LiveRefreshJob) Name() string {
	return LiveRefreshJobName
}

// Schedule returns the cron schedule
func (j *LiveRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every watched date. Today is always refreshed so its cache
// entry never goes stale while the server runs; it is only pushed when watched.
func (j *LiveRefreshJob) Run(ctx context.Context) error {
	today := calendar.Key(calendar.Today(j.now))
	dates := lo.Uniq(append([]string{today}, j.hub.Dates()...))

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		view := j.funnel.Refresh(ctx, date)
		if j.hub.Subscribers(date) > 0 {
			j.hub.Broadcast(view)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"dates": dates,
	}).Debug("Live refresh completed")

	return nil
}
