package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/stages"
)

var (
	funnelColumns = []string{"Стадия", "Кол-во", "Сумма"}
	funnelWidths  = []int{46, 10, 18}
	dealColumns   = []string{"Сделка", "Сумма", "Время"}
	dealWidths    = []int{40, 18, 5}
)

// TextRenderer writes plain text tables
type TextRenderer struct {
	w   io.Writer
	loc *time.Location
}

// NewText creates a text renderer. A nil loc means time.Local.
func NewText(w io.Writer, loc *time.Location) *TextRenderer {
	if loc == nil {
		loc = time.Local
	}
	return &TextRenderer{w: w, loc: loc}
}

// Funnel writes the funnel table followed by the summary block
func (r *TextRenderer) Funnel(v contracts.FunnelView) {
	r.header(v.Date)
	r.tableHeader(funnelColumns, funnelWidths)
	for _, row := range v.Rows {
		r.tableRow([]string{StageLabel(row.Position, row.Stage), Count(row.Count), Money(row.TotalSum)}, funnelWidths)
	}
	r.separator()
	r.keyValue("Всего хуков", Count(v.TotalHooks))
	r.keyValue("Общая сумма", Money(v.TotalSum))
	r.keyValue("Сумма подтверждений", Money(v.ConfirmedSum))
	r.keyValue("% подтверждений", v.ConfirmPercent.Display()+"  "+formula(v, stages.Confirmed))
	r.keyValue("% отмен", v.CancelPercent.Display()+"  "+formula(v, stages.Cancelled))
	r.keyValue("% недозвонов", v.MissedPercent.Display()+"  "+formula(v, stages.NoAnswer))
}

// Deals writes the deal list of one stage
func (r *TextRenderer) Deals(stage, dateKey string, deals []contracts.Deal) {
	r.header(dateKey)
	fmt.Fprintf(r.w, "  %s\n", stage)
	r.separator()
	r.tableHeader(dealColumns, dealWidths)
	if len(deals) == 0 {
		r.tableRow([]string{EmptyDeals, "-", "-"}, dealWidths)
		return
	}
	for _, d := range deals {
		r.tableRow([]string{d.Name, Money(d.Summa), DealTime(d.Timestamp, r.loc)}, dealWidths)
	}
}

// Dates writes one date per line with its display form
func (r *TextRenderer) Dates(keys []string) {
	if len(keys) == 0 {
		fmt.Fprintln(r.w, "Нет данных")
		return
	}
	for _, key := range keys {
		if t, err := calendar.ParseKey(key); err == nil {
			fmt.Fprintf(r.w, "   • %s  (%s)\n", key, calendar.Display(t))
			continue
		}
		fmt.Fprintf(r.w, "   • %s\n", key)
	}
}

// Calendar writes a Monday-first month grid. The selected day is bracketed,
// days outside the month are dimmed to dots.
func (r *TextRenderer) Calendar(month time.Time, selected string) {
	fmt.Fprintf(r.w, "%s\n", calendar.MonthTitle(month))
	fmt.Fprintln(r.w, joinCells(calendar.WeekdayNames[:]))
	for _, week := range calendar.MonthGrid(month.Year(), month.Month()) {
		cells := make([]string, len(week))
		for i, day := range week {
			switch {
			case !day.InMonth:
				cells[i] = " ."
			case day.Key() == selected:
				cells[i] = fmt.Sprintf("[%d]", day.Date.Day())
			default:
				cells[i] = fmt.Sprintf("%2d", day.Date.Day())
			}
		}
		fmt.Fprintln(r.w, joinCells(cells))
	}
}

func (r *TextRenderer) header(dateKey string) {
	display := dateKey
	if t, err := calendar.ParseKey(dateKey); err == nil {
		display = calendar.Display(t)
	}
	fmt.Fprintln(r.w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(r.w, "  Воронка сделок за %s\n", display)
	r.separator()
}

func (r *TextRenderer) separator() {
	fmt.Fprintln(r.w, "───────────────────────────────────────────────────────────")
}

func (r *TextRenderer) tableHeader(columns []string, widths []int) {
	r.tableRow(columns, widths)
	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(r.w, strings.Repeat("─", total))
}

func (r *TextRenderer) tableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(r.w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(r.w, "  ")
		}
	}
	fmt.Fprintln(r.w)
}

func (r *TextRenderer) keyValue(key, value string) {
	fmt.Fprintf(r.w, "   %-*s : %s\n", 20, key, value)
}

// formula describes a rate as row positions over "Все готово", e.g. =(п.13+п.18+п.22)/п.7×100%.
// Stages missing from the view are left out; a missing ready row reads as 1.
func formula(v contracts.FunnelView, group []stages.Name) string {
	var parts []string
	for _, name := range group {
		if row, ok := v.Row(name); ok {
			parts = append(parts, fmt.Sprintf("п.%d", row.Position))
		}
	}
	if len(parts) == 0 {
		parts = []string{"0"}
	}
	ready := "1"
	if row, ok := v.Row(stages.AllReady); ok {
		ready = fmt.Sprintf("п.%d", row.Position)
	}
	return fmt.Sprintf("=(%s)/%s×100%%", strings.Join(parts, "+"), ready)
}

// joinCells pads each cell to the width of a bracketed two-digit day
func joinCells(cells []string) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%-4s", c)
	}
	return strings.TrimRight(b.String(), " ")
}
