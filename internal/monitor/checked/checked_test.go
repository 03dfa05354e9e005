package checked

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/typestate-monitor/internal/errs"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/gateway/gatewaytest"
	"github.com/and161185/typestate-monitor/internal/monitor"
	"github.com/and161185/typestate-monitor/model"
)

func newObserved() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, obs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar(), obs
}

func requireNotConnected(t *testing.T, err error) {
	t.Helper()
	var fe *errs.FetchError
	require.ErrorAs(t, err, &fe)
	require.ErrorIs(t, err, errs.ErrNotConnected)
}

func requireNotFetched(t *testing.T, err error) {
	t.Helper()
	var de *errs.DisplayError
	require.ErrorAs(t, err, &de)
	require.ErrorIs(t, err, errs.ErrNotFetched)
}

func TestFullPass(t *testing.T) {
	chain := gatewaytest.NewChain()
	chain.Set(model.DefaultAssets[0].Address, gatewaytest.Token{Supply: big.NewInt(1_500_000), Decimals: 6})
	chain.Set(model.DefaultAssets[1].Address, gatewaytest.Token{Supply: big.NewInt(2_750_000_000), Decimals: 9})
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), nil)
	ctx := context.Background()

	require.Equal(t, monitor.PhaseUnconnected, m.Phase())
	require.NoError(t, m.Connect(ctx))
	require.Equal(t, monitor.PhaseConnected, m.Phase())
	require.NoError(t, m.Fetch(ctx))
	require.Equal(t, monitor.PhaseDataFetched, m.Phase())

	lines, err := m.Display()
	require.NoError(t, err)
	require.Equal(t, []string{"USDT Supply: $1.50", "USDC Supply: $2.75"}, lines)

	// the connection slot persists after fetch
	require.NotNil(t, m.conn)
	require.Equal(t, int32(1), m.conn.Refs())
	require.Equal(t, 0, chain.Closed())

	m.Close()
	require.Equal(t, 1, chain.Closed())
	lines, err = m.Display()
	require.NoError(t, err)
	require.Len(t, lines, 2)
}

func TestFetchBeforeConnect(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 2, 0)
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), nil)

	requireNotConnected(t, m.Fetch(context.Background()))
	require.Equal(t, 0, chain.Calls())
	require.Equal(t, "fetch: no connection found - connect was not called first", m.Fetch(context.Background()).Error())
}

func TestFetchBeforeConnect_AfterPriorHistory(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 2, 0)
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), nil)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.Fetch(ctx))
	m.Close()

	requireNotConnected(t, m.Fetch(ctx))
	requireNotConnected(t, m.Fetch(ctx))
}

func TestDisplayBeforeFetch(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 2, 0)
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), nil)

	_, err := m.Display()
	requireNotFetched(t, err)

	require.NoError(t, m.Connect(context.Background()))
	lines, err := m.Display()
	require.Nil(t, lines)
	requireNotFetched(t, err)
}

func TestReconnect_WarnsOnceAndReplaces(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 2, 0)
	logger, obs := newObserved()
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), logger)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	first := m.conn
	require.Zero(t, obs.FilterLevelExact(zapcore.WarnLevel).Len())

	require.NoError(t, m.Connect(ctx))
	require.NotSame(t, first, m.conn)
	require.Equal(t, 1, obs.FilterLevelExact(zapcore.WarnLevel).Len())

	// the replaced connection is released
	require.Equal(t, int32(0), first.Refs())
	require.Equal(t, 1, chain.Closed())
	require.Equal(t, 2, chain.Dials())

	require.NoError(t, m.Fetch(ctx))
	_, err := m.Display()
	require.NoError(t, err)
}

func TestReconnect_FailureKeepsExistingConnection(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 2, 0)
	key := "k"
	g := gatewaytest.NewGateway(chain, model.DefaultAssets,
		gateway.WithCredential(func() (string, error) {
			if key == "" {
				return "", errs.ErrCredentialMissing
			}
			return key, nil
		}))
	m := New(g, nil)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	first := m.conn

	key = ""
	err := m.Connect(ctx)
	var ce *errs.ConnectError
	require.ErrorAs(t, err, &ce)
	require.ErrorIs(t, err, errs.ErrCredentialMissing)
	require.Same(t, first, m.conn)
	require.NoError(t, m.Fetch(ctx))
}

func TestFetch_SecondAssetFails_NoPartialSet(t *testing.T) {
	chain := gatewaytest.Stablecoins(1_500_000, 0, 6)
	boom := errors.New("rpc timeout")
	chain.Set(model.DefaultAssets[1].Address, gatewaytest.Token{Err: boom})
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), nil)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))

	err := m.Fetch(ctx)
	var fe *errs.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "USDC", fe.Asset)
	require.ErrorIs(t, err, boom)

	_, err = m.Display()
	requireNotFetched(t, err)
	require.Equal(t, monitor.PhaseConnected, m.Phase())
}

func TestFetch_FailureClearsEarlierMetrics(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 2, 0)
	m := New(gatewaytest.NewGateway(chain, model.DefaultAssets), nil)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.Fetch(ctx))

	chain.Set(model.DefaultAssets[0].Address, gatewaytest.Token{Err: errors.New("gone")})
	require.Error(t, m.Fetch(ctx))

	_, err := m.Display()
	requireNotFetched(t, err)
}

func TestRun(t *testing.T) {
	chain := gatewaytest.Stablecoins(100, 250, 2)

	lines, err := Run(context.Background(), gatewaytest.NewGateway(chain, model.DefaultAssets), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"USDT Supply: $1.00", "USDC Supply: $2.50"}, lines)
	require.Equal(t, 1, chain.Closed())
}

func TestRun_ConnectFailure(t *testing.T) {
	g := gatewaytest.NewGateway(gatewaytest.NewChain(), model.DefaultAssets,
		gateway.WithCredential(gateway.StaticCredential("")))

	_, err := Run(context.Background(), g, nil)
	var ce *errs.ConnectError
	require.ErrorAs(t, err, &ce)
}
