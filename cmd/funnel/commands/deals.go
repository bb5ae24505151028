package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/dealfunnel/internal/stages"
	"github.com/wonny/dealfunnel/internal/view"
)

// dealsCmd represents the deals command
var dealsCmd = &cobra.Command{
	Use:   "deals <stage|position>",
	Short: "Show the deals behind a stage",
	Long: `Lists the deals of one stage on a date. The stage is given by name or by
its row number in the funnel (1-25).

Example:
  go run ./cmd/funnel deals "Все готово" --date 2024-01-15
  go run ./cmd/funnel deals 13`,
	Args: cobra.ExactArgs(1),
	RunE: runDeals,
}

var dealsDate string

func init() {
	rootCmd.AddCommand(dealsCmd)

	dealsCmd.Flags().StringVar(&dealsDate, "date", "", "date YYYY-MM-DD (default today)")
}

func runDeals(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(dealsDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	stage, err := resolveStage(a.funnel.Catalog(), args[0])
	if err != nil {
		return err
	}

	list := a.deals.GetDeals(context.Background(), stage, date)

	if asJSON {
		return PrintJSON(list)
	}

	view.NewText(os.Stdout, nil).Deals(stage, date, list)
	return nil
}

// resolveStage accepts a stage name or a 1-based position
func resolveStage(catalog *stages.Catalog, arg string) (string, error) {
	if catalog.Contains(arg) {
		return arg, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if name, ok := catalog.At(n); ok {
			return name, nil
		}
		return "", fmt.Errorf("stage position %d out of range 1-%d", n, catalog.Len())
	}
	return "", fmt.Errorf("unknown stage %q", arg)
}
