package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/view"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the funnel for a date",
	Long: `Shows all 25 stages in funnel order with counts and sums, followed by
total hooks, total sum and the confirm / cancel / no-answer rates.

Example:
  go run ./cmd/funnel stats
  go run ./cmd/funnel stats --date 2024-01-15 --json`,
	RunE: runStats,
}

var (
	statsDate    string
	statsRefresh bool
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsDate, "date", "", "date YYYY-MM-DD (default today)")
	statsCmd.Flags().BoolVar(&statsRefresh, "refresh", false, "bypass the session cache")
}

func runStats(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(statsDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	var v contracts.FunnelView
	if statsRefresh {
		v = a.funnel.Refresh(ctx, date)
	} else {
		v = a.funnel.View(ctx, date)
	}

	if asJSON {
		return PrintJSON(v)
	}

	view.NewText(os.Stdout, nil).Funnel(v)
	if v.TotalHooks == 0 {
		PrintWarning(fmt.Sprintf("No stats for %s", date))
	}
	return nil
}
