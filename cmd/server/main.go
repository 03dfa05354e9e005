package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/typestate-monitor/internal/buildinfo"
	"github.com/and161185/typestate-monitor/internal/config"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/server"
)

func main() {
	buildinfo.Fprint(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.NewServerConfig()
	defer func() { _ = config.Logger.Sync() }()

	config.Logger.Infof("Server config: Addr=%s, RPCEndpoint=%s, APIKeyEnv=%s, StaticDir=%q, RateLimit=%g, TrustedSubnet set=%t",
		config.Addr,
		config.RPCEndpoint,
		config.APIKeyEnv,
		config.StaticDir,
		config.RateLimit,
		config.TrustedSubnet != "",
	)

	source := gateway.New(config.RPCEndpoint,
		gateway.WithCredential(gateway.EnvCredential(config.APIKeyEnv)),
		gateway.WithLogger(config.Logger),
	)

	srv := server.NewServer(source, config)
	if err := srv.Run(ctx); err != nil {
		config.Logger.Fatal(err)
	}
}
