package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/stages"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLRenderer renders the dashboard pages
type HTMLRenderer struct {
	funnel *template.Template
	deals  *template.Template
	loc    *time.Location
	now    func() time.Time
	live   bool
}

// NewHTML parses the embedded templates. live adds the websocket auto-reload script.
func NewHTML(loc *time.Location, now func() time.Time, live bool) (*HTMLRenderer, error) {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}

	funnel, err := template.ParseFS(templateFS, "templates/layout.html", "templates/funnel.html")
	if err != nil {
		return nil, fmt.Errorf("parse funnel template: %w", err)
	}
	deals, err := template.ParseFS(templateFS, "templates/layout.html", "templates/deals.html")
	if err != nil {
		return nil, fmt.Errorf("parse deals template: %w", err)
	}

	return &HTMLRenderer{funnel: funnel, deals: deals, loc: loc, now: now, live: live}, nil
}

type funnelPage struct {
	DateKey     string
	DateDisplay string
	RefreshURL  string
	Calendar    calendarModel
	Rows        []rowModel
	TotalHooks  string
	TotalSum    string
	Rates       []rateModel
	Live        bool
}

type rowModel struct {
	Stage    string
	Label    string
	Count    string
	Sum      string
	DealsURL string
}

type rateModel struct {
	ID      string
	Title   string
	Value   string
	Formula string
}

type calendarModel struct {
	Title    string
	PrevURL  string
	NextURL  string
	Weekdays [7]string
	Weeks    [][]dayModel
}

type dayModel struct {
	Key    string
	Number int
	URL    string
	Class  string
}

type dealsPage struct {
	DateKey     string
	DateDisplay string
	Stage       string
	BackURL     string
	Deals       []dealModel
	Empty       string
}

type dealModel struct {
	Name string
	Sum  string
	Time string
}

// DashboardURL links the funnel page of a date
func DashboardURL(dateKey string) string {
	return "/dashboard?date=" + url.QueryEscape(dateKey)
}

// DealsURL links the deals page of a stage on a date
func DealsURL(stage, dateKey string) string {
	return "/dashboard/deals/" + url.PathEscape(stage) + "?date=" + url.QueryEscape(dateKey)
}

// Funnel renders the funnel page. available marks calendar days that have data.
func (r *HTMLRenderer) Funnel(w io.Writer, v contracts.FunnelView, available []string) error {
	selected, err := calendar.ParseKey(v.Date)
	if err != nil {
		return err
	}

	page := funnelPage{
		DateKey:     v.Date,
		DateDisplay: calendar.Display(selected),
		RefreshURL:  DashboardURL(v.Date) + "&refresh=1",
		Calendar:    r.calendar(selected, available),
		Rows: lo.Map(v.Rows, func(row contracts.FunnelRow, _ int) rowModel {
			return rowModel{
				Stage:    row.Stage,
				Label:    StageLabel(row.Position, row.Stage),
				Count:    Count(row.Count),
				Sum:      Money(row.TotalSum),
				DealsURL: DealsURL(row.Stage, v.Date),
			}
		}),
		TotalHooks: Count(v.TotalHooks),
		TotalSum:   Money(v.TotalSum),
		Rates: []rateModel{
			{ID: "confirmPercent", Title: "% подтверждений", Value: v.ConfirmPercent.Display(), Formula: formula(v, stages.Confirmed)},
			{ID: "cancelPercent", Title: "% отмен", Value: v.CancelPercent.Display(), Formula: formula(v, stages.Cancelled)},
			{ID: "missedPercent", Title: "% недозвонов", Value: v.MissedPercent.Display(), Formula: formula(v, stages.NoAnswer)},
		},
		Live: r.live,
	}

	return r.funnel.ExecuteTemplate(w, "layout", page)
}

// Deals renders the deal list of one stage
func (r *HTMLRenderer) Deals(w io.Writer, stage, dateKey string, deals []contracts.Deal) error {
	selected, err := calendar.ParseKey(dateKey)
	if err != nil {
		return err
	}

	page := dealsPage{
		DateKey:     dateKey,
		DateDisplay: calendar.Display(selected),
		Stage:       stage,
		BackURL:     DashboardURL(dateKey),
		Deals: lo.Map(deals, func(d contracts.Deal, _ int) dealModel {
			return dealModel{Name: d.Name, Sum: Money(d.Summa), Time: DealTime(d.Timestamp, r.loc)}
		}),
		Empty: EmptyDeals,
	}

	return r.deals.ExecuteTemplate(w, "layout", page)
}

func (r *HTMLRenderer) calendar(selected time.Time, available []string) calendarModel {
	today := calendar.Key(calendar.Today(r.now))
	selectedKey := calendar.Key(selected)
	hasData := lo.SliceToMap(available, func(k string) (string, bool) { return k, true })

	grid := calendar.MonthGrid(selected.Year(), selected.Month())
	weeks := make([][]dayModel, len(grid))
	for i, week := range grid {
		weeks[i] = make([]dayModel, len(week))
		for j, day := range week {
			key := day.Key()
			classes := []string{"calendar-day"}
			if !day.InMonth {
				classes = append(classes, "other-month")
			}
			if hasData[key] {
				classes = append(classes, "has-data")
			}
			if key == today {
				classes = append(classes, "today")
			}
			if key == selectedKey {
				classes = append(classes, "active")
			}
			weeks[i][j] = dayModel{
				Key:    key,
				Number: day.Date.Day(),
				URL:    DashboardURL(key),
				Class:  strings.Join(classes, " "),
			}
		}
	}

	return calendarModel{
		Title:    calendar.MonthTitle(selected),
		PrevURL:  DashboardURL(calendar.Key(calendar.ShiftMonth(selected, -1))),
		NextURL:  DashboardURL(calendar.Key(calendar.ShiftMonth(selected, 1))),
		Weekdays: calendar.WeekdayNames,
		Weeks:    weeks,
	}
}
