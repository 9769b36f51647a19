// Command mailcast runs the batch email dispatch service or a single offline job.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mailcast",
		Short: "Batch email dispatch with live NDJSON progress",
		Long: `mailcast sends one personalized email per row of a tabular batch, pacing sends
with a jittered delay and reporting each outcome as a line of NDJSON.

Configuration is read from environment variables, optionally loaded from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment from this file (default: .env when present)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	return cmd
}
