// Command fieldplot renders inverse-model predictions against ground truth
// and training observations for a 1D spatiotemporal field.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/fieldplot/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "fieldplot",
		Short:        "plot inverse-model predictions for a 1D spatiotemporal field",
		Version:      version.String(),
		SilenceUsage: true,
	}
	opts.bindPersistent(rootCmd)

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "render the cell, array and grid figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, plotAll)
		},
	}
	cellCmd := &cobra.Command{
		Use:   "cell",
		Short: "render the time series at a fixed position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, plotCell)
		},
	}
	arrayCmd := &cobra.Command{
		Use:   "array",
		Short: "render the spatial profile at a fixed time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, plotArray)
		},
	}
	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "render the space-time contour map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, plotGrid)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve a precomputed predictor over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.serve(cmd.Context())
		},
	}
	serveCmd.Flags().StringVar(&opts.listen, "listen", "localhost:50051", "gRPC listen address")

	rootCmd.AddCommand(allCmd, cellCmd, arrayCmd, gridCmd, serveCmd)

	return rootCmd
}
