package game

import (
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

// Options configures a Game at construction time.
type Options struct {
	// Config is the run configuration. Nil means config.Cfg().
	Config *config.Config

	Seed           int64
	LogStats       bool    // log window and perf stats via slog
	StatsWindowSec float64 // 0 = config telemetry.stats_window
	OutputDir      string  // CSV output directory, empty disables
	StepsPerUpdate int     // ticks per Update/UpdateHeadless call, min 1

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}
