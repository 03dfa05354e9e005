// Command monitorctl runs one monitor lifecycle pass from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/typestate-monitor/internal/buildinfo"
	"github.com/and161185/typestate-monitor/internal/config"
	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/internal/monitor"
	"github.com/and161185/typestate-monitor/internal/monitor/checked"
	"github.com/and161185/typestate-monitor/internal/monitor/typed"
)

// sourceFactory builds the data source from the resolved upstream settings.
type sourceFactory func(up config.Upstream, logger *zap.SugaredLogger) monitor.Source

func gatewaySource(up config.Upstream, logger *zap.SugaredLogger) monitor.Source {
	return gateway.New(up.RPCEndpoint,
		gateway.WithCredential(gateway.EnvCredential(up.APIKeyEnv)),
		gateway.WithLogger(logger),
	)
}

type cli struct {
	cfg       config.ClientConfig
	newSource sourceFactory
	logger    *zap.SugaredLogger
}

func newRootCmd(newSource sourceFactory) *cobra.Command {
	c := &cli{cfg: config.ClientConfig{Upstream: config.DefaultUpstream()}, newSource: newSource}

	root := &cobra.Command{
		Use:           "monitorctl",
		Short:         "Query stablecoin supply through the phase-typed or runtime-checked monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// flags win over environment
			up := config.DefaultUpstream()
			config.ReadUpstreamEnvironment(&up)
			if !cmd.Flags().Changed("rpc") {
				c.cfg.RPCEndpoint = up.RPCEndpoint
			}
			if !cmd.Flags().Changed("key-env") {
				c.cfg.APIKeyEnv = up.APIKeyEnv
			}

			if c.logger == nil {
				l, err := config.NewConsoleLogger(c.cfg.Verbose)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				c.logger = l.Sugar()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.cfg.RPCEndpoint, "rpc", c.cfg.RPCEndpoint, "RPC endpoint prefix")
	root.PersistentFlags().StringVar(&c.cfg.APIKeyEnv, "key-env", c.cfg.APIKeyEnv, "environment variable holding the RPC credential")
	root.PersistentFlags().BoolVarP(&c.cfg.Verbose, "verbose", "v", false, "log lifecycle transitions")

	root.AddCommand(
		&cobra.Command{
			Use:   "typed",
			Short: "Run the phase-typed lifecycle",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				lines, err := typed.Run(cmd.Context(), c.source(), c.logger)
				if err != nil {
					return err
				}
				return printLines(cmd.OutOrStdout(), lines)
			},
		},
		&cobra.Command{
			Use:   "checked",
			Short: "Run the runtime-checked lifecycle",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				lines, err := checked.Run(cmd.Context(), c.source(), c.logger)
				if err != nil {
					return err
				}
				return printLines(cmd.OutOrStdout(), lines)
			},
		},
		&cobra.Command{
			Use:   "misuse",
			Short: "Fetch on a runtime-checked monitor that was never connected",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m := checked.New(c.source(), c.logger)
				defer m.Close()
				if err := m.Fetch(cmd.Context()); err != nil { // phaseorder:ignore
					return printLines(cmd.OutOrStdout(), []string{fmt.Sprintf("[RUNTIME ERROR] %v", err)})
				}
				return fmt.Errorf("fetch without connect succeeded")
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.Fprint(cmd.OutOrStdout())
			},
		},
	)
	return root
}

func (c *cli) source() monitor.Source {
	return c.newSource(c.cfg.Upstream, c.logger)
}

func printLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(gatewaySource).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
