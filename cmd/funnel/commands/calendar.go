package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/view"
)

// calendarCmd represents the calendar command
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the month grid around a date",
	Long: `Prints a Monday-first month grid with the selected day in brackets.

Example:
  go run ./cmd/funnel calendar --date 2024-01-15
  go run ./cmd/funnel calendar --months -1`,
	RunE: runCalendar,
}

var (
	calendarDate   string
	calendarMonths int
)

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().StringVar(&calendarDate, "date", "", "selected date YYYY-MM-DD (default today)")
	calendarCmd.Flags().IntVar(&calendarMonths, "months", 0, "shift the shown month by N months")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(calendarDate)
	if err != nil {
		return err
	}

	selected, err := calendar.ParseKey(date)
	if err != nil {
		return err
	}

	view.NewText(os.Stdout, nil).Calendar(calendar.ShiftMonth(selected, calendarMonths), date)
	return nil
}
