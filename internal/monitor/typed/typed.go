// Package typed implements the phase-typed monitor.
//
// A Monitor's type argument is its lifecycle phase. Connect accepts only a
// *Monitor[Unconnected], Fetch only a *Monitor[Connected] and Display only a
// *Monitor[DataFetched], so calling an operation out of order does not compile.
//
// Go has no move semantics. Each transition invalidates the handle it was given
// before doing any work, whatever the outcome; passing that handle again fails
// with errs.ErrHandleConsumed. A failed transition leaves the caller nothing to
// retry with: start over from New.
package typed

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/typestate-monitor/internal/errs"
	"github.com/and161185/typestate-monitor/internal/format"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/monitor"
	"github.com/and161185/typestate-monitor/model"
)

// Unconnected is the initial phase. It holds no resources.
type Unconnected struct{}

// Connected owns the connection acquired by Connect.
type Connected struct {
	conn *gateway.Connection
}

// DataFetched owns the metric set produced by Fetch.
type DataFetched struct {
	metrics model.MetricSet
}

// State is the set of lifecycle phases.
type State interface {
	Unconnected | Connected | DataFetched
}

// Monitor is a lifecycle handle in phase S.
type Monitor[S State] struct {
	source   monitor.Source
	logger   *zap.SugaredLogger
	state    S
	consumed bool
}

// New returns a handle in the Unconnected phase.
func New(source monitor.Source, logger *zap.SugaredLogger) *Monitor[Unconnected] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Info("[SAFE] monitor created in unconnected phase, only Connect is available")
	return &Monitor[Unconnected]{source: source, logger: logger}
}

// Phase reports the phase encoded in the handle type.
func (m *Monitor[S]) Phase() monitor.Phase {
	switch any(m.state).(type) {
	case Connected:
		return monitor.PhaseConnected
	case DataFetched:
		return monitor.PhaseDataFetched
	default:
		return monitor.PhaseUnconnected
	}
}

// Consumed reports whether the handle has already been passed to a transition.
func (m *Monitor[S]) Consumed() bool { return m.consumed }

// take hands the contents of m to a transition and invalidates m.
func take[S State](m *Monitor[S]) (Monitor[S], bool) {
	if m == nil || m.consumed || m.source == nil {
		return Monitor[S]{}, false
	}
	cur := *m
	*m = Monitor[S]{consumed: true}
	return cur, true
}

// Connect acquires a connection and moves to the Connected phase.
func Connect(ctx context.Context, m *Monitor[Unconnected]) (*Monitor[Connected], error) {
	cur, ok := take(m)
	if !ok {
		return nil, errs.Connect(errs.ErrHandleConsumed)
	}

	cur.logger.Info("[SAFE] attempting to connect")
	conn, err := cur.source.OpenConnection(ctx)
	if err != nil {
		cur.logger.Errorf("[SAFE] connection error: %v", err)
		return nil, errs.Connect(err)
	}

	cur.logger.Infof("[SAFE] connected to %s, only Fetch is available", conn.Host())
	return &Monitor[Connected]{
		source: cur.source,
		logger: cur.logger,
		state:  Connected{conn: conn},
	}, nil
}

// Fetch queries every asset and moves to the DataFetched phase. The
// connection is released once the query returns.
func Fetch(ctx context.Context, m *Monitor[Connected]) (*Monitor[DataFetched], error) {
	cur, ok := take(m)
	if !ok {
		return nil, errs.Fetch("", errs.ErrHandleConsumed)
	}

	conn := cur.state.conn
	defer conn.Release()

	cur.logger.Info("[SAFE] fetching data")
	metrics, err := cur.source.QueryAll(ctx, conn)
	if err != nil {
		cur.logger.Errorf("[SAFE] fetch error: %v", err)
		return nil, errs.Fetch("", err)
	}
	if len(metrics) == 0 {
		return nil, errs.Fetch("", errs.ErrNoAssets)
	}

	cur.logger.Infof("[SAFE] fetched %d assets, only Display is available", len(metrics))
	return &Monitor[DataFetched]{
		source: cur.source,
		logger: cur.logger,
		state:  DataFetched{metrics: metrics},
	}, nil
}

// Display renders the fetched metrics, one line per asset in query order.
// It has no failure mode and does not consume the handle.
func Display(m *Monitor[DataFetched]) []string {
	if m == nil {
		return nil
	}
	lines := format.Lines(m.state.metrics)
	for _, l := range lines {
		m.logger.Infof("[SAFE] %s", l)
	}
	return lines
}

// Run performs one full lifecycle pass.
func Run(ctx context.Context, source monitor.Source, logger *zap.SugaredLogger) ([]string, error) {
	connected, err := Connect(ctx, New(source, logger))
	if err != nil {
		return nil, err
	}
	fetched, err := Fetch(ctx, connected)
	if err != nil {
		return nil, err
	}
	return Display(fetched), nil
}
