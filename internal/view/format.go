// Package view renders funnel views and deal lists for people:
// a plain text table for the terminal and HTML pages for the dashboard.
package view

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/wonny/dealfunnel/internal/contracts"
)

// Currency suffix appended to every sum
const Currency = " ₽"

// EmptyDeals is shown in place of an empty deal list
const EmptyDeals = "Нет сделок для выбранной стадии"

func printer() *message.Printer {
	return message.NewPrinter(language.Russian)
}

// Count formats a count with Russian digit grouping
func Count(n int64) string {
	return printer().Sprintf("%d", n)
}

// Money formats a sum with Russian grouping, at most 2 fraction digits, and the currency suffix
func Money(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	return printer().Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(2))) + Currency
}

// StageLabel is the row label "п.N. stage"
func StageLabel(position int, stage string) string {
	return fmt.Sprintf("п.%d. %s", position, stage)
}

// DealTime renders the deal timestamp as HH:MM in loc, or "-" when unknown
func DealTime(ts contracts.Timestamp, loc *time.Location) string {
	if ts.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format("15:04")
}
