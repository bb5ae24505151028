package backend

import (
	"context"
	"net/url"

	"github.com/wonny/dealfunnel/internal/contracts"
)

// FetchStats fetches raw per-stage counters for a date
// GET /api/stats?date=YYYY-MM-DD
func (c *Client) FetchStats(ctx context.Context, dateKey string) ([]contracts.StageRecord, error) {
	var records []contracts.StageRecord
	if err := c.getJSON(ctx, "/api/stats", url.Values{"date": {dateKey}}, &records); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  dateKey,
		"count": len(records),
	}).Debug("Fetched stats")

	if records == nil {
		records = []contracts.StageRecord{}
	}
	return records, nil
}

// FetchDates lists the dates the backend has stats for, newest first
// GET /api/dates
func (c *Client) FetchDates(ctx context.Context) ([]string, error) {
	var dates []string
	if err := c.getJSON(ctx, "/api/dates", nil, &dates); err != nil {
		return nil, err
	}
	if dates == nil {
		dates = []string{}
	}
	return dates, nil
}
