// Package checked implements the runtime-checked monitor: one mutable handle
// with optional connection and metrics slots. Every operation validates its
// preconditions when called.
//
// A Monitor is not safe for concurrent use.
package checked

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/typestate-monitor/internal/errs"
	"github.com/and161185/typestate-monitor/internal/format"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/monitor"
	"github.com/and161185/typestate-monitor/model"
)

// Monitor is a lifecycle handle whose phase is checked on every call.
type Monitor struct {
	source monitor.Source
	logger *zap.SugaredLogger

	conn    *gateway.Connection // nil until Connect succeeds
	metrics model.MetricSet     // nil until Fetch succeeds
}

// New returns a monitor with both slots empty.
func New(source monitor.Source, logger *zap.SugaredLogger) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Monitor{source: source, logger: logger}
}

// Phase infers the lifecycle phase from the populated slots.
func (m *Monitor) Phase() monitor.Phase {
	switch {
	case m.metrics != nil:
		return monitor.PhaseDataFetched
	case m.conn != nil:
		return monitor.PhaseConnected
	default:
		return monitor.PhaseUnconnected
	}
}

// Connect fills the connection slot. An existing connection is released and
// replaced with a warning; reconnecting never fails on its own.
func (m *Monitor) Connect(ctx context.Context) error {
	m.logger.Info("[UNSAFE] attempting to connect")

	if m.conn != nil {
		m.logger.Warnf("[UNSAFE] connection already exists [host=%s], replacing it", m.conn.Host())
	}

	conn, err := m.source.OpenConnection(ctx)
	if err != nil {
		m.logger.Errorf("[UNSAFE] connection error: %v", err)
		return errs.Connect(err)
	}

	if m.conn != nil {
		m.conn.Release()
	}
	m.conn = conn
	m.logger.Info("[UNSAFE] connection successful")
	return nil
}

// Fetch queries every asset over the stored connection. The metrics slot is
// filled only on full success and cleared on any failure.
func (m *Monitor) Fetch(ctx context.Context) error {
	m.logger.Info("[UNSAFE] attempting to fetch data")

	if m.conn == nil {
		m.logger.Errorf("[UNSAFE] %v", errs.ErrNotConnected)
		return &errs.FetchError{Err: errs.ErrNotConnected}
	}

	// The slot keeps its reference; the query holds its own for its duration.
	if err := m.conn.Retain(); err != nil {
		m.metrics = nil
		return errs.Fetch("", err)
	}
	defer m.conn.Release()

	metrics, err := m.source.QueryAll(ctx, m.conn)
	if err != nil {
		m.metrics = nil
		m.logger.Errorf("[UNSAFE] fetch error: %v", err)
		return errs.Fetch("", err)
	}
	if len(metrics) == 0 {
		m.metrics = nil
		return errs.Fetch("", errs.ErrNoAssets)
	}

	m.metrics = metrics
	m.logger.Infof("[UNSAFE] fetched %d assets", len(metrics))
	return nil
}

// Display renders the stored metrics, one line per asset in query order.
func (m *Monitor) Display() ([]string, error) {
	m.logger.Info("[UNSAFE] attempting to display results")

	if m.metrics == nil {
		m.logger.Errorf("[UNSAFE] %v", errs.ErrNotFetched)
		return nil, &errs.DisplayError{Err: errs.ErrNotFetched}
	}

	lines := format.Lines(m.metrics)
	for _, l := range lines {
		m.logger.Infof("[UNSAFE] %s", l)
	}
	return lines, nil
}

// Close releases the connection slot. Stored metrics remain readable.
func (m *Monitor) Close() {
	if m.conn == nil {
		return
	}
	m.conn.Release()
	m.conn = nil
}

// Run performs one full lifecycle pass and releases the connection afterwards.
func Run(ctx context.Context, source monitor.Source, logger *zap.SugaredLogger) ([]string, error) {
	m := New(source, logger)
	defer m.Close()

	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	if err := m.Fetch(ctx); err != nil {
		return nil, err
	}
	return m.Display()
}
