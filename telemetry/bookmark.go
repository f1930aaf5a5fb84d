package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstDelivery      BookmarkType = "first_delivery"
	BookmarkForageBreakthrough BookmarkType = "forage_breakthrough"
	BookmarkColonyCrash        BookmarkType = "colony_crash"
	BookmarkStableColony       BookmarkType = "stable_colony"
	BookmarkExtinction         BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the colony's history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	delivered          bool // a delivery has been seen
	extinct            bool
	recentPopPeak      int // peak population in recent history
	stableWindowsCount int // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable colony detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstDelivery(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Forage breakthrough: delivered food > 2x rolling average
		if b := bd.checkForageBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Colony crash: population dropped >30% from recent peak
		if b := bd.checkColonyCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable colony: low population variance over 5+ windows
		if b := bd.checkStableColony(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if pop := stats.Population(); pop > bd.recentPopPeak {
		bd.recentPopPeak = pop
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkFirstDelivery(stats WindowStats) *Bookmark {
	if bd.delivered || stats.Deliveries == 0 {
		return nil
	}
	bd.delivered = true
	return &Bookmark{
		Type:        BookmarkFirstDelivery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First food reached the nest: %d deliveries, %.2f food", stats.Deliveries, stats.FoodDelivered),
	}
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if bd.extinct || stats.Population() > 0 {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Colony died out with %.2f food left in the nest", stats.NestFood),
	}
}

func (bd *BookmarkDetector) checkForageBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.FoodDelivered
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.FoodDelivered > avg*2.0 && stats.Deliveries >= 5 {
		return &Bookmark{
			Type:        BookmarkForageBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Delivered %.2f food, %.1fx average (%.2f)", stats.FoodDelivered, stats.FoodDelivered/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkColonyCrash(stats WindowStats) *Bookmark {
	if bd.recentPopPeak == 0 {
		return nil
	}

	pop := stats.Population()
	dropPercent := 1.0 - float64(pop)/float64(bd.recentPopPeak)
	if dropPercent > 0.30 && pop < bd.recentPopPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentPopPeak
		bd.recentPopPeak = pop

		return &Bookmark{
			Type:        BookmarkColonyCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Colony crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, pop),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableColony(stats WindowStats) *Bookmark {
	if stats.Population() < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Population())
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Population()) - mean
		variance += d * d
	}
	variance /= 4

	if mean > 0 && variance/(mean*mean) < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableColony,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable colony of %d ants over 5+ windows, nest stock %.2f", stats.Population(), stats.NestFood),
		}
	}

	return nil
}
