package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/pkg/logger"
)

type recordingRefresher struct {
	dates []string
}

func (r *recordingRefresher) Refresh(_ context.Context, date string) contracts.FunnelView {
	r.dates = append(r.dates, date)
	return contracts.FunnelView{Date: date}
}

type recordingHub struct {
	watched []string
	pushed  []string
}

func (h *recordingHub) Broadcast(view contracts.FunnelView) {
	h.pushed = append(h.pushed, view.Date)
}

func (h *recordingHub) Dates() []string {
	return h.watched
}

func (h *recordingHub) Subscribers(date string) int {
	n := 0
	for _, d := range h.watched {
		if d == date {
			n++
		}
	}
	return n
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 20, 12, 0, 0, 0, time.Local)
}

func TestLiveRefreshJob(t *testing.T) {
	refresher := &recordingRefresher{}
	hub := &recordingHub{watched: []string{"2024-01-15", "2024-01-20"}}
	job := NewLiveRefreshJob(refresher, hub, "@every 1m", fixedNow, logger.Nop())

	assert.Equal(t, LiveRefreshJobName, job.Name())
	assert.Equal(t, "@every 1m", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"2024-01-20", "2024-01-15"}, refresher.dates)
	assert.Equal(t, []string{"2024-01-20", "2024-01-15"}, hub.pushed)
}

func TestLiveRefreshJobPushesOnlyWatchedDates(t *testing.T) {
	refresher := &recordingRefresher{}
	hub := &recordingHub{watched: []string{"2024-01-15"}}
	job := NewLiveRefreshJob(refresher, hub, "@every 1m", fixedNow, logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"2024-01-20", "2024-01-15"}, refresher.dates)
	assert.Equal(t, []string{"2024-01-15"}, hub.pushed)
}

func TestLiveRefreshJobStopsOnCancel(t *testing.T) {
	refresher := &recordingRefresher{}
	job := NewLiveRefreshJob(refresher, &recordingHub{}, "@every 1m", fixedNow, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Empty(t, refresher.dates)
}
