package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/runlog/internal/chart"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"plot"},
	Short:   "Render logs.png for the experiment",
	Long: `Render every metric as a line plot into logs.png.

Metrics are grouped into rows by the text before their first "/"; names
without a "/" go into the "uncategorized" row.`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	l, settings, err := openLogger(nil)
	if err != nil {
		return err
	}

	path, err := l.Show(plotOptions(settings))
	if errors.Is(err, chart.ErrNoMetrics) {
		return fmt.Errorf("nothing to plot in %s. Run 'runlog log' first", l.Dir())
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Plot saved:"), path)
	return nil
}
