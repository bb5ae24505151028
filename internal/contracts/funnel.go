package contracts

import (
	"github.com/shopspring/decimal"
)

// TotalPolicy selects how FunnelView totals are derived
type TotalPolicy string

const (
	// PolicyAllDealsStage takes totals from the "Все сделки" record when the backend
	// reported one, otherwise sums all known stages.
	PolicyAllDealsStage TotalPolicy = "all_deals"
	// PolicySumOfStages always sums all known stages.
	PolicySumOfStages TotalPolicy = "sum"
)

// ParseTotalPolicy maps a config value to a policy, defaulting to PolicyAllDealsStage
func ParseTotalPolicy(s string) TotalPolicy {
	if TotalPolicy(s) == PolicySumOfStages {
		return PolicySumOfStages
	}
	return PolicyAllDealsStage
}

// FunnelRow is one catalog stage in display order
type FunnelRow struct {
	Position int             `json:"position"`
	Stage    string          `json:"stage"`
	Count    int64           `json:"count"`
	TotalSum decimal.Decimal `json:"total_summa"`
}

// Percent is a full-precision percentage, rounded only for display
type Percent float64

// Rounded returns the value rounded half away from zero to 2 decimals
func (p Percent) Rounded() decimal.Decimal {
	return decimal.NewFromFloat(float64(p)).Round(2)
}

// Display renders the percentage as "NN.NN%"
func (p Percent) Display() string {
	return decimal.NewFromFloat(float64(p)).StringFixed(2) + "%"
}

// FunnelView is the fully populated funnel for one date. Read-only:
// every date selection builds a new value.
type FunnelView struct {
	Date string      `json:"date"`
	Rows []FunnelRow `json:"rows"`

	TotalHooks   int64           `json:"total_hooks"`
	TotalCount   int64           `json:"total_count"`
	TotalSum     decimal.Decimal `json:"total_summa"`
	ConfirmedSum decimal.Decimal `json:"confirmed_summa"`

	ReadyCount   int64 `json:"ready_count"`
	ConfirmCount int64 `json:"confirm_count"`
	CancelCount  int64 `json:"cancel_count"`
	MissedCount  int64 `json:"missed_count"`

	ConfirmPercent Percent `json:"confirm_percent"`
	CancelPercent  Percent `json:"cancel_percent"`
	MissedPercent  Percent `json:"missed_percent"`

	Policy TotalPolicy `json:"policy"`
}

// Row returns the row for a stage name
func (v FunnelView) Row(stage string) (FunnelRow, bool) {
	for _, r := range v.Rows {
		if r.Stage == stage {
			return r, true
		}
	}
	return FunnelRow{}, false
}
