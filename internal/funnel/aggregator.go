// Package funnel turns raw per-stage records into the ordered funnel view.
package funnel

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/stages"
)

type stageTotals struct {
	count int64
	sum   decimal.Decimal
}

// Aggregate merges raw records into catalog order and derives totals and rates.
// It is pure: the same input always yields the same view.
//
//   - every catalog stage gets a row, zero when absent from records
//   - a later record for the same stage overwrites an earlier one
//   - records with names outside the catalog are dropped
//   - negative numbers count as zero
//   - rates are relative to the "Все готово" count, floored to 1
func Aggregate(dateKey string, records []contracts.StageRecord, catalog *stages.Catalog, policy contracts.TotalPolicy) contracts.FunnelView {
	known := lo.FilterMap(records, func(r contracts.StageRecord, _ int) (contracts.StageRecord, bool) {
		return r.Sanitized(), catalog.Contains(r.Stage)
	})

	byStage := make(map[string]stageTotals, catalog.Len())
	for _, r := range known {
		byStage[r.Stage] = stageTotals{count: r.Count, sum: r.TotalSum}
	}

	names := catalog.Names()
	rows := make([]contracts.FunnelRow, len(names))
	for i, name := range names {
		t := byStage[name]
		rows[i] = contracts.FunnelRow{
			Position: i + 1,
			Stage:    name,
			Count:    t.count,
			TotalSum: t.sum,
		}
	}

	view := contracts.FunnelView{
		Date:   dateKey,
		Rows:   rows,
		Policy: policy,
	}

	view.TotalHooks = lo.SumBy(known, func(r contracts.StageRecord) int64 { return r.Count })
	view.TotalCount, view.TotalSum = totals(known, policy)

	view.ConfirmedSum = sumOf(byStage, stages.Confirmed)
	view.ConfirmCount = countOf(byStage, stages.Confirmed)
	view.CancelCount = countOf(byStage, stages.Cancelled)
	view.MissedCount = countOf(byStage, stages.NoAnswer)

	view.ReadyCount = byStage[stages.AllReady].count
	if view.ReadyCount < 1 {
		view.ReadyCount = 1
	}

	view.ConfirmPercent = percentOf(view.ConfirmCount, view.ReadyCount)
	view.CancelPercent = percentOf(view.CancelCount, view.ReadyCount)
	view.MissedPercent = percentOf(view.MissedCount, view.ReadyCount)

	return view
}

// totals returns the deal count and money total for the view.
// Under PolicyAllDealsStage the last reported "Все сделки" record wins when present.
func totals(known []contracts.StageRecord, policy contracts.TotalPolicy) (int64, decimal.Decimal) {
	if policy == contracts.PolicyAllDealsStage {
		if r, _, ok := lo.FindLastIndexOf(known, func(r contracts.StageRecord) bool {
			return r.Stage == stages.AllDeals
		}); ok {
			return r.Count, r.TotalSum
		}
	}

	count := lo.SumBy(known, func(r contracts.StageRecord) int64 { return r.Count })
	sum := decimal.Zero
	for _, r := range known {
		sum = sum.Add(r.TotalSum)
	}
	return count, sum
}

func countOf(byStage map[string]stageTotals, names []string) int64 {
	return lo.SumBy(names, func(n string) int64 { return byStage[n].count })
}

func sumOf(byStage map[string]stageTotals, names []string) decimal.Decimal {
	sum := decimal.Zero
	for _, n := range names {
		sum = sum.Add(byStage[n].sum)
	}
	return sum
}

func percentOf(count, ready int64) contracts.Percent {
	return contracts.Percent(float64(count) / float64(ready) * 100)
}
