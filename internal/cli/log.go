package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var logStep int

var logCmd = &cobra.Command{
	Use:   "log name=value [name=value...]",
	Short: "Record metric values at a step",
	Long: `Record metric values at a step and rewrite logs.json.

Re-logging a step replaces the earlier value. Without --step the step is
inferred from the longest series, which is only correct when every metric is
logged at every step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVar(&logStep, "step", 0, "step index (0-based)")
}

func runLog(cmd *cobra.Command, args []string) error {
	data, err := parseMetrics(args)
	if err != nil {
		return err
	}

	l, _, err := openLogger(nil)
	if err != nil {
		return err
	}

	step := logStep
	if cmd.Flags().Changed("step") {
		err = l.Log(data, step)
	} else {
		fmt.Fprintln(os.Stderr, styleWarning.Render("Warning: no --step given, inferring it from the longest series"))
		step, err = l.LogNext(data)
	}
	if err != nil {
		return err
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %s = %s\n",
			styleLabel.Render(fmt.Sprintf("step %d", step)),
			name,
			styleValue.Render(fmt.Sprintf("%g", data[name])),
		)
	}
	return nil
}
