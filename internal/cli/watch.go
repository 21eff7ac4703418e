package cli

import (
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/watchfire-io/runlog/internal/chart"
	"github.com/watchfire-io/runlog/internal/config"
	"github.com/watchfire-io/runlog/internal/metrics"
	"github.com/watchfire-io/runlog/internal/tui"
	"github.com/watchfire-io/runlog/internal/watcher"
)

var watchNoTUI bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the plot whenever logs.json changes",
	Long: `Watch the experiment directory and re-render logs.png after every
metrics write. On a terminal the latest value of each metric is shown live;
use --no-tui for plain log output.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoTUI, "no-tui", false, "print updates instead of showing the live view")
}

func runWatch(cmd *cobra.Command, args []string) error {
	exp, settings, err := resolveExperiment()
	if err != nil {
		return err
	}
	dir := exp.Dir()
	if err := config.EnsureExperimentDir(dir); err != nil {
		return fmt.Errorf("failed to create experiment dir: %w", err)
	}

	w, err := watcher.New(dir)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	opts := plotOptions(settings)
	refresh := func() tea.Msg {
		return reloadAndRender(dir, opts)
	}

	ctx := cmd.Context()
	if !watchNoTUI && isTerminal() {
		updates := make(chan tea.Msg, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-w.Events():
					if ev.Type != watcher.EventMetricsChanged {
						continue
					}
					select {
					case updates <- refresh():
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return tui.Run(fmt.Sprintf("%s / %s", exp.Project, exp.Name), refresh, updates)
	}

	report(refresh())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.Events():
			if ev.Type == watcher.EventMetricsChanged {
				report(refresh())
			}
		}
	}
}

// reloadAndRender reads logs.json and redraws logs.png when there is
// anything to draw.
func reloadAndRender(dir string, opts chart.Options) tea.Msg {
	m, err := config.LoadMetrics(dir)
	if err != nil {
		return tui.ErrorMsg{Err: err}
	}
	if m == nil {
		m = metrics.NewLog()
	}

	msg := tui.MetricsLoadedMsg{Log: m, At: time.Now()}
	if m.Len() == 0 {
		return msg
	}
	path := config.PlotFile(dir)
	if err := chart.Render(m, path, opts); err != nil {
		return tui.ErrorMsg{Err: err}
	}
	msg.PlotPath = path
	return msg
}

func report(msg tea.Msg) {
	switch msg := msg.(type) {
	case tui.ErrorMsg:
		log.Printf("[watch] %v", msg.Err)
	case tui.MetricsLoadedMsg:
		if msg.PlotPath == "" {
			log.Printf("[watch] no metrics yet")
			return
		}
		log.Printf("[watch] %d metrics, %d steps -> %s", msg.Log.Len(), msg.Log.MaxLen(), msg.PlotPath)
	}
}
