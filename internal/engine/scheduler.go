// Package engine drives the monitoring and alerting pipeline: recurring
// per-subscriber timers, hazard ingestion, deduplication, and dispatch.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ilhammtg/mhew-backend/internal/config"
	"github.com/ilhammtg/mhew-backend/internal/observability"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// Cadence names. Each subscriber owns one timer per cadence.
const (
	CadenceSeismic = "seismic"
	CadenceNowcast = "nowcast"
	CadenceWeather = "weather"
)

const timerPrefix = "mhews:"

// TickFunc is one pipeline stage invoked with the subscriber bound.
type TickFunc func(ctx context.Context, subscriberID string) error

type cadenceSpec struct {
	name     string
	delay    time.Duration
	interval time.Duration
	tick     TickFunc
}

// Scheduler owns the recurring timer sets. Registration is idempotent: a
// subscriber whose namespace already has timers is never scheduled twice.
// Timers run until the scheduler stops; a failed tick is logged and the next
// tick proceeds on schedule.
type Scheduler struct {
	pipeline *Pipeline
	metrics  *observability.Metrics
	clock    clockwork.Clock
	cadences []cadenceSpec

	mu     sync.Mutex
	timers map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler over the pipeline with intervals from
// configuration. Initial delays are staggered so a fresh registration does
// not fire everything at once.
func NewScheduler(pipeline *Pipeline, metrics *observability.Metrics, clock clockwork.Clock, cfg config.SchedulerConfig) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		pipeline: pipeline,
		metrics:  metrics,
		clock:    clock,
		timers:   make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.cadences = []cadenceSpec{
		{CadenceSeismic, 5 * time.Second, time.Duration(cfg.SeismicInterval) * time.Second, pipeline.CheckSeismic},
		{CadenceNowcast, 10 * time.Second, time.Duration(cfg.NowcastInterval) * time.Second, pipeline.CheckNowcast},
		{CadenceWeather, 30 * time.Second, time.Duration(cfg.WeatherInterval) * time.Second, pipeline.LogWeather},
	}
	return s
}

// RegisterSubscriber schedules the three cadences for a subscriber. Returns
// false when the subscriber's namespace already has timers.
func (s *Scheduler) RegisterSubscriber(subscriberID string) bool {
	prefix := timerPrefix + subscriberID + ":"

	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.timers {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	for _, spec := range s.cadences {
		name := prefix + spec.name
		s.timers[name] = struct{}{}
		s.wg.Add(1)
		go s.runTimer(name, subscriberID, spec)
	}
	s.metrics.ActiveTimers.Set(float64(len(s.timers)))

	logger.Info().Str("subscriber", subscriberID).Msg("Scheduled monitoring timers")
	return true
}

// RegisterSystemDefaults schedules the baseline timer set so data exists even
// with zero active subscribers. Same idempotency rule, SYSTEM namespace.
func (s *Scheduler) RegisterSystemDefaults() bool {
	return s.RegisterSubscriber(storage.SystemSubscriber)
}

// TimerCount returns the number of registered timers.
func (s *Scheduler) TimerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all timers and waits for in-flight ticks.
func (s *Scheduler) Stop() {
	logger.Info().Msg("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

// runTimer fires one cadence for one subscriber: first after the initial
// delay, then on every interval, for the lifetime of the process.
func (s *Scheduler) runTimer(name, subscriberID string, spec cadenceSpec) {
	defer s.wg.Done()

	select {
	case <-s.ctx.Done():
		return
	case <-s.clock.After(spec.delay):
	}
	s.fire(name, subscriberID, spec)

	ticker := s.clock.NewTicker(spec.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.Chan():
			s.fire(name, subscriberID, spec)
		}
	}
}

// fire runs one tick. Errors and panics are contained here so the timer
// keeps its schedule.
func (s *Scheduler) fire(name, subscriberID string, spec cadenceSpec) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.TickErrors.WithLabelValues(spec.name).Inc()
			logger.Error().
				Str("timer", name).
				Interface("panic", r).
				Msg("Tick panicked, timer stays scheduled")
		}
	}()

	start := s.clock.Now()
	s.metrics.TicksTotal.WithLabelValues(spec.name).Inc()

	if err := spec.tick(s.ctx, subscriberID); err != nil {
		s.metrics.TickErrors.WithLabelValues(spec.name).Inc()
		logger.Error().
			Err(err).
			Str("timer", name).
			Msg("Tick failed, retrying on next cycle")
	}

	s.metrics.TickDuration.WithLabelValues(spec.name).Observe(s.clock.Since(start).Seconds())
}
