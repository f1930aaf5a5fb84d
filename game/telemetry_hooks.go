package game

import (
	"log/slog"

	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleColony())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}

	if g.logStats {
		if id, ok := g.lifetimeTracker.TopDelivererID(); ok {
			top := g.lifetimeTracker.Get(id)
			slog.Info("top_deliverer",
				"entity_id", id,
				"kind", top.Kind.String(),
				"food_delivered", top.FoodDelivered,
				"deliveries", top.Deliveries,
			)
		}
	}
}

// sampleColony collects end-of-window colony state for the collector.
func (g *Game) sampleColony() telemetry.ColonySample {
	sample := telemetry.ColonySample{
		NestFood:  g.nest.Food,
		FieldFood: g.field.Total(systems.ChannelFood),
		FieldNest: g.field.Total(systems.ChannelNest),
	}

	query := g.antFilter.Query()
	for query.Next() {
		_, _, ant, sat, held := query.Get()
		sample.Population[ant.Kind]++
		sample.Satiations = append(sample.Satiations, sat.Amount)
		sample.Carried = append(sample.Carried, held.Amount)
	}

	fq := g.foodFilter.Query()
	for fq.Next() {
		_, food := fq.Get()
		sample.FoodSources++
		sample.FoodInSources += food.Amount
	}

	return sample
}
