package funnel

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/stages"
)

func rec(stage string, count int64, sum string) contracts.StageRecord {
	return contracts.StageRecord{Stage: stage, Count: count, TotalSum: decimal.RequireFromString(sum)}
}

func decEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestAggregateEmpty(t *testing.T) {
	view := Aggregate("2024-01-01", nil, stages.Default(), contracts.PolicyAllDealsStage)

	require.Len(t, view.Rows, 25)
	for i, row := range view.Rows {
		assert.Equal(t, i+1, row.Position)
		assert.Equal(t, int64(0), row.Count)
		assert.True(t, row.TotalSum.IsZero())
	}
	assert.Equal(t, stages.AllDeals, view.Rows[0].Stage)
	assert.Equal(t, "Непонятно", view.Rows[24].Stage)

	assert.Equal(t, int64(0), view.TotalHooks)
	assert.Equal(t, int64(0), view.TotalCount)
	assert.True(t, view.TotalSum.IsZero())
	assert.Equal(t, int64(1), view.ReadyCount)
	assert.Equal(t, "0.00%", view.ConfirmPercent.Display())
	assert.Equal(t, "0.00%", view.CancelPercent.Display())
	assert.Equal(t, "0.00%", view.MissedPercent.Display())
	assert.Equal(t, "2024-01-01", view.Date)
}

func TestAggregateConfirmScenario(t *testing.T) {
	records := []contracts.StageRecord{
		rec("Все готово", 10, "0"),
		rec("Подтвердил заказ без предоплаты", 3, "3000"),
		rec("Подтвердил заказ с предоплатой", 2, "2000"),
	}

	view := Aggregate("2024-01-01", records, stages.Default(), contracts.PolicyAllDealsStage)

	assert.Equal(t, int64(5), view.ConfirmCount)
	assert.Equal(t, "50.00%", view.ConfirmPercent.Display())
	assert.InDelta(t, 50.0, float64(view.ConfirmPercent), 1e-9)
	decEq(t, "5000", view.ConfirmedSum)
	assert.Equal(t, int64(10), view.ReadyCount)

	// No "Все сделки" record, so totals fall back to the sum of stages.
	assert.Equal(t, int64(15), view.TotalHooks)
	assert.Equal(t, int64(15), view.TotalCount)
	decEq(t, "5000", view.TotalSum)

	row, ok := view.Row("Подтвердил заказ с предоплатой")
	require.True(t, ok)
	assert.Equal(t, 18, row.Position)
	assert.Equal(t, int64(2), row.Count)
}

func TestAggregateCancelAndMissedRates(t *testing.T) {
	records := []contracts.StageRecord{
		rec("Все готово", 8, "0"),
		rec("Отменил заказ без предоплаты", 1, "100"),
		rec("Отменил заказ регион", 1, "100"),
		rec("Не взял трубку без предоплаты", 1, "0"),
		rec("Не взял трубку с предоплатой", 1, "0"),
		rec("Не взял трубку регион", 1, "0"),
	}

	view := Aggregate("2024-01-01", records, stages.Default(), contracts.PolicyAllDealsStage)

	assert.Equal(t, int64(2), view.CancelCount)
	assert.Equal(t, "25.00%", view.CancelPercent.Display())
	assert.Equal(t, int64(3), view.MissedCount)
	assert.Equal(t, "37.50%", view.MissedPercent.Display())
	assert.Equal(t, "0.00%", view.ConfirmPercent.Display())
}

func TestAggregateReadyFloor(t *testing.T) {
	records := []contracts.StageRecord{
		rec("Все готово", 0, "0"),
		rec("Подтвердил заказ регион", 3, "900"),
	}

	view := Aggregate("2024-01-01", records, stages.Default(), contracts.PolicyAllDealsStage)

	assert.Equal(t, int64(1), view.ReadyCount)
	assert.Equal(t, "300.00%", view.ConfirmPercent.Display())
}

func TestAggregateUnknownStagesIgnored(t *testing.T) {
	base := []contracts.StageRecord{
		rec("Все готово", 4, "0"),
		rec("МСК", 2, "500"),
	}
	withUnknown := append([]contracts.StageRecord{rec("Неизвестно", 99, "99999"), rec("мск", 1, "1")}, base...)

	a := Aggregate("d", base, stages.Default(), contracts.PolicySumOfStages)
	b := Aggregate("d", withUnknown, stages.Default(), contracts.PolicySumOfStages)

	assert.Equal(t, a.TotalHooks, b.TotalHooks)
	assert.Equal(t, a.TotalCount, b.TotalCount)
	assert.True(t, a.TotalSum.Equal(b.TotalSum))
	require.Len(t, b.Rows, 25)
	_, found := b.Row("Неизвестно")
	assert.False(t, found)
}

func TestAggregateOverwritesDuplicates(t *testing.T) {
	records := []contracts.StageRecord{
		rec("МСК", 2, "200"),
		rec("МСК", 5, "700"),
	}

	view := Aggregate("d", records, stages.Default(), contracts.PolicySumOfStages)

	row, _ := view.Row("МСК")
	assert.Equal(t, int64(5), row.Count, "later record overwrites")
	decEq(t, "700", row.TotalSum)
	// Hook volume counts what was reported, duplicates included.
	assert.Equal(t, int64(7), view.TotalHooks)
}

func TestAggregateNegativeValuesAreZero(t *testing.T) {
	records := []contracts.StageRecord{
		rec("Все готово", -5, "-100"),
		rec("МСК", -1, "50"),
	}

	view := Aggregate("d", records, stages.Default(), contracts.PolicySumOfStages)

	assert.Equal(t, int64(1), view.ReadyCount)
	row, _ := view.Row("МСК")
	assert.Equal(t, int64(0), row.Count)
	assert.Equal(t, int64(0), view.TotalHooks)
	decEq(t, "50", view.TotalSum)
}

func TestAggregateTotalPolicies(t *testing.T) {
	records := []contracts.StageRecord{
		rec("Все сделки", 12, "120000"),
		rec("Все готово", 7, "70000"),
		rec("МСК", 3, "30000"),
	}

	allDeals := Aggregate("d", records, stages.Default(), contracts.PolicyAllDealsStage)
	assert.Equal(t, int64(12), allDeals.TotalCount)
	decEq(t, "120000", allDeals.TotalSum)
	assert.Equal(t, int64(22), allDeals.TotalHooks)
	assert.Equal(t, contracts.PolicyAllDealsStage, allDeals.Policy)

	summed := Aggregate("d", records, stages.Default(), contracts.PolicySumOfStages)
	assert.Equal(t, int64(22), summed.TotalCount)
	decEq(t, "220000", summed.TotalSum)
	assert.Equal(t, int64(22), summed.TotalHooks)
}

func TestAggregateIsIdempotent(t *testing.T) {
	records := []contracts.StageRecord{
		rec("Все сделки", 12, "120000.50"),
		rec("Все готово", 7, "0"),
		rec("Подтвердил заказ регион", 2, "1999.99"),
		rec("Непонятно", 1, "10"),
	}
	snapshot := append([]contracts.StageRecord(nil), records...)

	first, err := json.Marshal(Aggregate("d", records, stages.Default(), contracts.PolicyAllDealsStage))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate("d", records, stages.Default(), contracts.PolicyAllDealsStage))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, snapshot, records, "input must not be mutated")
}

func TestAggregateCustomCatalog(t *testing.T) {
	catalog := stages.MustNew([]string{"B", "A"})
	view := Aggregate("d", []contracts.StageRecord{rec("A", 1, "1"), rec("C", 9, "9")}, catalog, contracts.PolicySumOfStages)

	require.Len(t, view.Rows, 2)
	assert.Equal(t, "B", view.Rows[0].Stage)
	assert.Equal(t, int64(1), view.Rows[1].Count)
	assert.Equal(t, int64(1), view.TotalHooks)
}
