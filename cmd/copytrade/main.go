// Command copytrade ranks Stellar wallets as copy-trading candidates.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "copytrade",
		Short:         "Rank Stellar wallets as copy-trading candidates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs (e.g. :9090)")
	root.PersistentFlags().StringVar(&a.metricsPushURL, "metrics-push-url", "", "Push metrics to this Pushgateway URL when the command exits")

	root.AddCommand(newNetworkCmd(a), newDomainCmd(a), newReportCmd(a))
	return root
}
