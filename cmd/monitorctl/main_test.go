package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/typestate-monitor/internal/config"
	"github.com/and161185/typestate-monitor/internal/errs"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/gateway/gatewaytest"
	"github.com/and161185/typestate-monitor/internal/monitor"
	"github.com/and161185/typestate-monitor/model"
)

func execute(t *testing.T, chain *gatewaytest.Chain, seen *config.Upstream, args ...string) (string, error) {
	t.Helper()
	factory := func(up config.Upstream, logger *zap.SugaredLogger) monitor.Source {
		if seen != nil {
			*seen = up
		}
		return gatewaytest.NewGateway(chain, model.DefaultAssets, gateway.WithLogger(logger))
	}

	cmd := newRootCmd(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLifecycleCommands(t *testing.T) {
	for _, name := range []string{"typed", "checked"} {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, gatewaytest.Stablecoins(1_500_000, 2_000_000, 6), nil, name)
			require.NoError(t, err)
			require.Equal(t, "USDT Supply: $1.50\nUSDC Supply: $2.00\n", out)
		})
	}
}

func TestLifecycleCommands_FetchFailure(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 1, 0)
	chain.Set(model.DefaultAssets[0].Address, gatewaytest.Token{Err: errors.New("boom")})

	_, err := execute(t, chain, nil, "checked")
	var fe *errs.FetchError
	require.ErrorAs(t, err, &fe)
}

func TestMisuseCommand(t *testing.T) {
	chain := gatewaytest.Stablecoins(1, 1, 0)
	out, err := execute(t, chain, nil, "misuse")
	require.NoError(t, err)
	require.Equal(t, "[RUNTIME ERROR] fetch: no connection found - connect was not called first\n", out)
	require.Equal(t, 0, chain.Dials())
}

func TestUpstreamResolution(t *testing.T) {
	t.Setenv("RPC_ENDPOINT", "https://env.example/v2/")
	t.Setenv("API_KEY_ENV", "ENV_KEY")

	var seen config.Upstream
	_, err := execute(t, gatewaytest.Stablecoins(1, 1, 0), &seen, "typed", "--key-env", "FLAG_KEY")
	require.NoError(t, err)
	require.Equal(t, "https://env.example/v2/", seen.RPCEndpoint)
	require.Equal(t, "FLAG_KEY", seen.APIKeyEnv)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, gatewaytest.NewChain(), nil, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Build version:")
}
