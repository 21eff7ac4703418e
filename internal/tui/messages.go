package tui

import (
	"time"

	"github.com/watchfire-io/runlog/internal/metrics"
)

// MetricsLoadedMsg carries a freshly read metric log.
type MetricsLoadedMsg struct {
	Log      *metrics.Log
	PlotPath string // empty when the plot was not re-rendered
	At       time.Time
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}
