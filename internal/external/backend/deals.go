package backend

import (
	"context"
	"net/url"

	"github.com/wonny/dealfunnel/internal/contracts"
)

// DealsPath builds the deals path with the stage percent-encoded as one segment,
// non-ASCII included
func DealsPath(stage string) string {
	return "/api/deals/" + url.PathEscape(stage)
}

// FetchDeals fetches the deals behind one stage on one date
// GET /api/deals/{stage}?date=YYYY-MM-DD
func (c *Client) FetchDeals(ctx context.Context, stage, dateKey string) ([]contracts.Deal, error) {
	var deals []contracts.Deal
	if err := c.getJSON(ctx, DealsPath(stage), url.Values{"date": {dateKey}}, &deals); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"stage": stage,
		"date":  dateKey,
		"count": len(deals),
	}).Debug("Fetched deals")

	if deals == nil {
		deals = []contracts.Deal{}
	}
	return deals, nil
}
