package testutils

import (
	"go.uber.org/zap"

	"github.com/and161185/typestate-monitor/internal/config"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/gateway/gatewaytest"
	"github.com/and161185/typestate-monitor/internal/server"
	"github.com/and161185/typestate-monitor/model"
)

// NewTestServer returns a server reading from chain with the default assets.
func NewTestServer(chain *gatewaytest.Chain, opts ...gateway.Option) *server.Server {
	cfg := &config.ServerConfig{
		Upstream: config.DefaultUpstream(),
		Addr:     "127.0.0.1:0",
		Logger:   zap.NewNop().Sugar(),
	}
	return server.NewServer(gatewaytest.NewGateway(chain, model.DefaultAssets, opts...), cfg)
}
