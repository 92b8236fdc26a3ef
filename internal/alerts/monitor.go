package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/models"
	"groww-sentinel/pkg/market"
)

// MonitoringStatus is a point-in-time snapshot of the monitor and the
// alert collection.
type MonitoringStatus struct {
	Active       bool                       `json:"monitoring_active"`
	Interval     time.Duration              `json:"check_interval"`
	MarketStatus models.MarketStatus        `json:"market_status"`
	ShouldPoll   bool                       `json:"should_poll"`
	MarketTime   time.Time                  `json:"market_time"`
	NextOpen     time.Time                  `json:"next_open"`
	Counts       map[models.AlertStatus]int `json:"alert_counts"`
}

// Monitor drives periodic alert sweeps. The interval adapts to the
// market session and is recomputed after every sweep, so a session
// boundary crossed mid-sleep takes effect on the next tick.
type Monitor struct {
	service *Service
	logger  zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor for the given service.
func NewMonitor(service *Service, logger zerolog.Logger) *Monitor {
	return &Monitor{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// Start launches the polling loop. Starting a running monitor is
// rejected with ErrMonitorRunning after a warning.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.logger.Warn().Msg("Monitor already running")
		return errors.ErrMonitorRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	m.logger.Info().
		Str("market_status", string(market.Status(m.now()))).
		Dur("interval", market.PollInterval(m.now())).
		Msg("Started price monitoring")

	go m.loop(ctx, m.done)
	return nil
}

// Stop cancels the polling loop and waits for it to exit. Stopping a
// stopped monitor is rejected with ErrMonitorStopped after a warning.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		m.logger.Warn().Msg("Monitor not running")
		return errors.ErrMonitorStopped
	}
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	cancel()
	<-done

	m.logger.Info().Msg("Stopped price monitoring")
	return nil
}

// Running reports whether the polling loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Status reports the monitor state together with market session and
// alert counts.
func (m *Monitor) Status() MonitoringStatus {
	now := m.now()
	return MonitoringStatus{
		Active:       m.Running(),
		Interval:     market.PollInterval(now),
		MarketStatus: market.Status(now),
		ShouldPoll:   market.ShouldPoll(now),
		MarketTime:   now.In(market.Location),
		NextOpen:     market.NextOpen(now),
		Counts:       m.service.Counts(),
	}
}

// loop sweeps, then sleeps for the session-appropriate interval,
// until the context is cancelled. Each iteration is contained: a
// panicking sweep is logged and the loop keeps going.
func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		m.runOnce(ctx)

		interval := market.PollInterval(m.now())
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runOnce performs a single gated sweep with panic containment.
func (m *Monitor) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Msg("Monitoring loop recovered from panic")
		}
	}()

	now := m.now()
	if !market.ShouldPoll(now) {
		m.logger.Debug().
			Str("market_status", string(market.Status(now))).
			Msg("Market closed, skipping sweep")
		return
	}

	m.service.sweep(ctx)
}
