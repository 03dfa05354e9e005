// Package monitor holds what the phase-typed and runtime-checked monitors share.
//
// Both monitors drive the same three-phase lifecycle: connect, fetch, display.
// The typed package rejects out-of-order calls at compile time; the checked
// package rejects them at run time with ErrNotConnected or ErrNotFetched.
package monitor

import (
	"context"

	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/model"
)

// Source opens connections and queries every configured asset.
// *gateway.Gateway satisfies it.
type Source interface {
	OpenConnection(ctx context.Context) (*gateway.Connection, error)
	QueryAll(ctx context.Context, conn *gateway.Connection) (model.MetricSet, error)
}

// Phase names the lifecycle phase a monitor is in.
type Phase string

const (
	PhaseUnconnected Phase = "unconnected"
	PhaseConnected   Phase = "connected"
	PhaseDataFetched Phase = "data_fetched"
)
