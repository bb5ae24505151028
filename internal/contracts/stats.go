package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// StageRecord is the backend-reported aggregate for one stage on one date.
// Wire form: {"stage": "...", "count": 3, "total_summa": 3000.5}
type StageRecord struct {
	Stage    string          `json:"stage"`
	Count    int64           `json:"count"`
	TotalSum decimal.Decimal `json:"total_summa"`
}

// UnmarshalJSON accepts counts written as integers, floats or strings;
// missing or null numeric fields decode as zero.
func (r *StageRecord) UnmarshalJSON(data []byte) error {
	var wire struct {
		Stage    string              `json:"stage"`
		Count    decimal.NullDecimal `json:"count"`
		TotalSum decimal.NullDecimal `json:"total_summa"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("stage record: %w", err)
	}

	r.Stage = wire.Stage
	r.Count = 0
	if wire.Count.Valid {
		r.Count = wire.Count.Decimal.IntPart()
	}
	r.TotalSum = decimal.Zero
	if wire.TotalSum.Valid {
		r.TotalSum = wire.TotalSum.Decimal
	}
	return nil
}

// Sanitized returns a copy with negative numbers clamped to zero
func (r StageRecord) Sanitized() StageRecord {
	if r.Count < 0 {
		r.Count = 0
	}
	if r.TotalSum.IsNegative() {
		r.TotalSum = decimal.Zero
	}
	return r
}
