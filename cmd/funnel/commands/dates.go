package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/dealfunnel/internal/view"
)

// datesCmd represents the dates command
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List dates that have stats",
	RunE:  runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	dates := a.funnel.Dates(context.Background())
	if asJSON {
		return PrintJSON(dates)
	}

	view.NewText(os.Stdout, nil).Dates(dates)
	return nil
}
