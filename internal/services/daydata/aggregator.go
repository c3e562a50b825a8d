// Package daydata loads, normalizes and analyzes one selected day of glucose data.
package daydata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/normalize"
	"github.com/j-veylop/glucodash/internal/services/quality"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

// ErrSuperseded is returned to a caller whose load was overtaken by a newer one.
// Its result was discarded and never published.
var ErrSuperseded = errors.New("load superseded by a newer request")

// RemoteClient fetches raw records for a UTC window. The day key lets the
// server apply its own date-string filter; callers must not rely on either filter.
type RemoteClient interface {
	FetchManualReadings(ctx context.Context, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error)
	FetchSensorReadings(ctx context.Context, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error)
	FetchMealEvents(ctx context.Context, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error)
}

// Config holds configuration for the aggregator.
type Config struct {
	Timezone      timerange.TimezoneConfig
	SamplesPerDay int
	Quality       quality.Config
	Target        models.TargetRange
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timezone:      timerange.HostZone(),
		SamplesPerDay: timerange.DefaultSamplesPerDay,
		Quality:       quality.DefaultConfig(),
		Target:        models.TargetRange{Low: 70, High: 180},
	}
}

// Aggregator owns the day snapshot shown by the dashboard.
type Aggregator struct {
	client    RemoteClient
	resolver  *timerange.Resolver
	analyzer  *quality.Analyzer
	timezone  timerange.TimezoneConfig
	eventChan chan Snapshot
	snapshot  Snapshot
	seq       atomic.Uint64
	mu        sync.RWMutex
}

// New creates a new aggregator in the Idle state.
func New(client RemoteClient, config Config) *Aggregator {
	if config.Target.Low == 0 && config.Target.High == 0 {
		config.Target = DefaultConfig().Target
	}

	a := &Aggregator{
		client:    client,
		resolver:  timerange.NewResolver(config.SamplesPerDay),
		analyzer:  quality.NewAnalyzer(config.Quality),
		timezone:  config.Timezone,
		eventChan: make(chan Snapshot, 16),
	}
	a.snapshot = Snapshot{
		State:    StateIdle,
		Controls: DefaultControls(a.Today(), config.Target),
	}
	return a
}

// Events returns the channel of published snapshots.
func (a *Aggregator) Events() <-chan Snapshot {
	return a.eventChan
}

// Snapshot returns the current snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Timezone returns the configured timezone.
func (a *Aggregator) Timezone() timerange.TimezoneConfig {
	return a.timezone
}

// Today returns today's day key in the configured zone, falling back to the host zone.
func (a *Aggregator) Today() string {
	loc, err := a.timezone.Location()
	if err != nil {
		loc = time.Local
	}
	return timerange.DayKey(time.Now().In(loc))
}

// IsToday reports whether the selected date is today.
func (a *Aggregator) IsToday() bool {
	return a.Snapshot().Controls.SelectedDate == a.Today()
}

// Load selects dayKey and loads it. Only the most recently started load
// publishes; an older one returns ErrSuperseded once it finishes.
func (a *Aggregator) Load(ctx context.Context, dayKey string) (Snapshot, error) {
	seq := a.seq.Add(1)
	log := logger.Logger.With("seq", seq, "day", dayKey)

	a.publish(seq, func(s *Snapshot) {
		s.State = StateLoading
		s.IsLoading = true
		s.Err = nil
		s.Records = models.DayRecords{}
		s.Range = nil
		s.Quality = nil
		s.Controls.SelectedDate = dayKey
	})

	dr, err := a.resolver.Resolve(dayKey, a.timezone)
	if err != nil {
		log.Warn("range resolution failed", "error", err)
		return a.fail(seq, fmt.Errorf("failed to resolve %s: %w", dayKey, err))
	}

	raw, err := a.fetch(ctx, dr)
	if err != nil {
		log.Warn("day fetch failed", "error", err)
		return a.fail(seq, err)
	}

	records := models.DayRecords{
		Manual: withinWindow(normalize.FromRemoteBatch(raw.manual, models.KindManual), dr),
		Sensor: withinWindow(normalize.FromRemoteBatch(raw.sensor, models.KindSensor), dr),
		Meals:  withinWindow(normalize.FromRemoteBatch(raw.meals, models.KindMeal), dr),
	}
	report := a.analyzer.Analyze(records.Manual, records.Sensor, dr)

	ok := a.publish(seq, func(s *Snapshot) {
		s.State = StateReady
		s.IsLoading = false
		s.Err = nil
		s.Records = records
		s.Range = &dr
		s.Quality = &report
		s.UpdatedAt = time.Now()
	})
	if !ok {
		log.Debug("discarding superseded load")
		return a.Snapshot(), ErrSuperseded
	}

	log.Info("day loaded",
		"manual", len(records.Manual),
		"sensor", len(records.Sensor),
		"meals", len(records.Meals),
		"gaps", len(report.Gaps),
		"coverage", fmt.Sprintf("%.0f%%", report.Density.CoveragePercent),
	)
	return a.Snapshot(), nil
}

// Reload loads the currently selected date again.
func (a *Aggregator) Reload(ctx context.Context) (Snapshot, error) {
	return a.Load(ctx, a.Snapshot().Controls.SelectedDate)
}

// ShiftDate loads the day days away from the selected date.
func (a *Aggregator) ShiftDate(ctx context.Context, days int) (Snapshot, error) {
	current := a.Snapshot().Controls.SelectedDate
	d, err := timerange.ParseDayKey(current)
	if err != nil {
		return a.Load(ctx, current)
	}
	return a.Load(ctx, timerange.DayKey(d.AddDate(0, 0, days)))
}

// SetVisibility toggles a record kind. It does not reload.
func (a *Aggregator) SetVisibility(kind models.Kind, visible bool) Snapshot {
	return a.updateControls(func(c *Controls) {
		c.SetVisible(kind, visible)
	})
}

// ToggleVisibility flips a record kind. It does not reload.
func (a *Aggregator) ToggleVisibility(kind models.Kind) Snapshot {
	return a.updateControls(func(c *Controls) {
		c.SetVisible(kind, !c.Visible(kind))
	})
}

// SetTargetRange changes the target bounds. It does not reload.
func (a *Aggregator) SetTargetRange(low, high float64) (Snapshot, error) {
	if low <= 0 || high <= low {
		return a.Snapshot(), fmt.Errorf("invalid target range %.0f-%.0f", low, high)
	}
	return a.updateControls(func(c *Controls) {
		c.Target = models.TargetRange{Low: low, High: high}
	}), nil
}

type rawDay struct {
	manual, sensor, meals []models.RemoteRecord
}

// fetch runs the three scoped fetches concurrently. Any failure discards all results.
func (a *Aggregator) fetch(ctx context.Context, dr models.DateRange) (rawDay, error) {
	start, end := dr.StartMillis(), dr.EndMillis()

	var raw rawDay
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := a.client.FetchManualReadings(gctx, start, end, dr.DayKey)
		if err != nil {
			return fmt.Errorf("manual readings: %w", err)
		}
		raw.manual = recs
		return nil
	})
	g.Go(func() error {
		recs, err := a.client.FetchSensorReadings(gctx, start, end, dr.DayKey)
		if err != nil {
			return fmt.Errorf("sensor readings: %w", err)
		}
		raw.sensor = recs
		return nil
	})
	g.Go(func() error {
		recs, err := a.client.FetchMealEvents(gctx, start, end, dr.DayKey)
		if err != nil {
			return fmt.Errorf("meal events: %w", err)
		}
		raw.meals = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return rawDay{}, err
	}
	return raw, nil
}

func (a *Aggregator) fail(seq uint64, err error) (Snapshot, error) {
	ok := a.publish(seq, func(s *Snapshot) {
		s.State = StateFailed
		s.IsLoading = false
		s.Err = err
		s.Records = models.DayRecords{}
		s.Range = nil
		s.Quality = nil
		s.UpdatedAt = time.Now()
	})
	if !ok {
		return a.Snapshot(), ErrSuperseded
	}
	return a.Snapshot(), err
}

// publish applies fn only if seq is still the latest issued sequence.
func (a *Aggregator) publish(seq uint64, fn func(*Snapshot)) bool {
	a.mu.Lock()
	if seq != a.seq.Load() {
		a.mu.Unlock()
		return false
	}
	next := a.snapshot
	fn(&next)
	next.Seq = seq
	a.snapshot = next
	a.mu.Unlock()

	a.sendEvent(next)
	return true
}

func (a *Aggregator) updateControls(fn func(*Controls)) Snapshot {
	a.mu.Lock()
	next := a.snapshot
	fn(&next.Controls)
	a.snapshot = next
	a.mu.Unlock()

	a.sendEvent(next)
	return next
}

// sendEvent sends a snapshot to the event channel non-blocking.
func (a *Aggregator) sendEvent(s Snapshot) {
	select {
	case a.eventChan <- s:
	default:
		// Channel full, drop oldest
		select {
		case <-a.eventChan:
		default:
		}
		select {
		case a.eventChan <- s:
		default:
		}
	}
}

// withinWindow keeps records inside the fetch window, plus unplaceable ones
// which carry no timestamp to filter on. The result is sorted by time.
func withinWindow(recs []models.Record, dr models.DateRange) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		if !r.Placed || dr.ContainsMillis(r.Timestamp) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
