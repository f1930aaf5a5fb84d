package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/colony/config"
)

// csvSink appends records to one CSV file, writing the header on first use.
type csvSink struct {
	name          string
	file          *os.File
	headerWritten bool
}

func openSink(dir, name string) (*csvSink, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvSink{name: name, file: f}, nil
}

// write marshals records, a slice of csv-tagged structs.
func (s *csvSink) write(records any) error {
	var err error
	if s.headerWritten {
		err = gocsv.MarshalWithoutHeaders(records, s.file)
	} else {
		err = gocsv.Marshal(records, s.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	s.headerWritten = true
	return nil
}

// DeathRecord is one row of deaths.csv.
type DeathRecord struct {
	Tick          int32   `csv:"tick"`
	EntityID      uint32  `csv:"entity_id"`
	Kind          string  `csv:"kind"`
	LifespanSec   float64 `csv:"lifespan_sec"`
	Pickups       int     `csv:"pickups"`
	FoodPickedUp  float64 `csv:"food_picked_up"`
	Deliveries    int     `csv:"deliveries"`
	FoodDelivered float64 `csv:"food_delivered"`
	NestMeals     int     `csv:"nest_meals"`
}

// NewDeathRecord flattens a finished lifetime into a CSV row.
func NewDeathRecord(tick int32, entityID uint32, s *LifetimeStats, dt float64) DeathRecord {
	return DeathRecord{
		Tick:          tick,
		EntityID:      entityID,
		Kind:          s.Kind.String(),
		LifespanSec:   s.LifespanSec(tick, dt),
		Pickups:       s.Pickups,
		FoodPickedUp:  s.FoodPickedUp,
		Deliveries:    s.Deliveries,
		FoodDelivered: s.FoodDelivered,
		NestMeals:     s.NestMeals,
	}
}

// OutputManager handles structured run output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir string

	telemetry *csvSink
	perf      *csvSink
	bookmarks *csvSink
	deaths    *csvSink
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	sinks := []struct {
		dst  **csvSink
		name string
	}{
		{&om.telemetry, "telemetry.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
		{&om.deaths, "deaths.csv"},
	}
	for _, s := range sinks {
		sink, err := openSink(dir, s.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*s.dst = sink
	}

	return om, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats})
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// WriteDeath appends a starved ant's lifetime to deaths.csv.
func (om *OutputManager) WriteDeath(r DeathRecord) error {
	if om == nil {
		return nil
	}
	return om.deaths.write([]DeathRecord{r})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var errs []error
	for _, s := range []*csvSink{om.telemetry, om.perf, om.bookmarks, om.deaths} {
		if s == nil {
			continue
		}
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
