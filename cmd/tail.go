package cmd

import (
	"context"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
)

var tailOpts struct {
	interval time.Duration
	format   string
}

var tailCmd = &cobra.Command{
	Use:   "tail <file>",
	Short: "Follow a unified2 log as it grows",
	Long: `Print entries as a sensor appends them. Records still being written
are retried every --interval until they are complete. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("interval") {
			cfg.Reader.PollInterval = tailOpts.interval
		}
		if cmd.Flags().Changed("format") {
			cfg.Output.Format = tailOpts.format
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runTail(ctx, cfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	tailCmd.Flags().DurationVarP(&tailOpts.interval, "interval", "i", config.DefaultPollInterval, "poll interval at end of file")
	tailCmd.Flags().StringVarP(&tailOpts.format, "format", "f", "text", "output format: text, json or yaml")
}

func runTail(ctx context.Context, c *config.Config, path string, out io.Writer) error {
	follow := *c
	follow.Reader.Follow = true
	return runDump(ctx, &follow, path, 0, out)
}
