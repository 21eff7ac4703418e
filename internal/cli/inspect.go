package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"status"},
	Short:   "Show the experiment's config and metrics",
	RunE:    runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	l, _, err := openLogger(nil)
	if err != nil {
		return err
	}

	exp := l.Experiment()
	fmt.Printf("%s %s\n", styleBrand.Render(exp.Project), styleValue.Render(exp.Name))
	fmt.Printf("  %s %s\n\n", styleLabel.Render("Dir:"), l.Dir())

	cfg := l.Config()
	fmt.Println(styleGroup.Render("Config"))
	if len(cfg) == 0 {
		fmt.Println(styleHint.Render("  (empty)"))
	} else {
		data, err := json.MarshalIndent(cfg, "  ", "  ")
		if err != nil {
			return fmt.Errorf("failed to format config: %w", err)
		}
		fmt.Printf("  %s\n", data)
	}
	fmt.Println()

	m := l.Metrics()
	fmt.Println(styleGroup.Render("Metrics"))
	if m.Len() == 0 {
		fmt.Println(styleHint.Render("  No metrics. Run 'runlog log' to record some."))
		return nil
	}

	width := 0
	for _, name := range m.Names() {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, g := range m.Groups() {
		fmt.Printf("  %s\n", styleLabel.Render(g.Name))
		for _, name := range g.Metrics {
			s := m.Series(name)
			latest := styleHint.Render("—")
			if step, v, ok := s.Latest(); ok {
				latest = fmt.Sprintf("%s %s", styleValue.Render(fmt.Sprintf("%g", v)), styleHint.Render(fmt.Sprintf("@ %d", step)))
			}
			fmt.Printf("    %-*s  %s  %s\n", width, name, latest,
				styleHint.Render(fmt.Sprintf("(%d/%d points)", s.Count(), len(s))))
		}
	}
	return nil
}
