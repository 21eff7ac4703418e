package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/runlog/internal/upload"
)

var uploadBackend string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Send the experiment to a tracking service",
	Long: `Send the experiment to a tracking service.

One session is opened with the project, experiment name and config, then
every step is sent in order with only the metrics present at that step, and
the session is closed. Backends: posthog, kafka (see 'runlog settings').`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadBackend, "backend", "", "override upload.backend from settings (posthog|kafka)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	l, settings, err := openLogger(nil)
	if err != nil {
		return err
	}

	cfg := settings.Upload
	if uploadBackend != "" {
		cfg.Backend = uploadBackend
	}

	sink, err := upload.NewSink(cfg)
	if err != nil {
		return err
	}
	if err := l.Upload(cmd.Context(), sink); err != nil {
		return err
	}

	exp := l.Experiment()
	fmt.Printf("%s %s/%s (%d steps via %s)\n",
		styleSuccess.Render("Uploaded"),
		exp.Project, exp.Name,
		l.Metrics().MaxLen(),
		cfg.Backend,
	)
	return nil
}
