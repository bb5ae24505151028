package calendar

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// WeekdayNames are the column headers of a Monday-first grid
var WeekdayNames = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// Day is one cell of a month grid
type Day struct {
	Date    time.Time
	InMonth bool
}

// Key returns the date key of the cell
func (d Day) Key() string {
	return Key(d.Date)
}

// Week is seven consecutive days starting on Monday
type Week [7]Day

// MonthTitle returns the Russian month name and year, e.g. "Январь 2024"
func MonthTitle(t time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// MonthGrid lays out the month as Monday-first weeks.
// Leading and trailing cells from adjacent months have InMonth=false.
func MonthGrid(year int, month time.Month) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
	end := last.AddDate(0, 0, 6-mondayOffset(last.Weekday()))

	var weeks []Week
	for day := start; !day.After(end); {
		var w Week
		for i := range w {
			w[i] = Day{Date: day, InMonth: day.Month() == month}
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// ShiftMonth moves t by n months, clamping the day to the target month's length
func ShiftMonth(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.Local)
}

// mondayOffset is the number of days since Monday
func mondayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
