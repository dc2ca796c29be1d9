package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/unified2"
)

var filterOpts struct {
	output string
	append bool
}

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Copy matching entries into a new unified2 log",
	Long: `Copy the entries that pass --type, --sid and --bpf into another
unified2 log. Skipped record types are not copied.

Examples:
  u2kit filter --sid 2100498 -w alerts.u2 unified2.log
  u2kit filter --bpf "tcp port 80" --append -w web.u2 unified2.log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("append") {
			cfg.Writer.Append = filterOpts.append
		}
		return runFilter(cmd.Context(), cfg, args[0], filterOpts.output, cmd.OutOrStdout())
	},
}

func init() {
	filterCmd.Flags().StringVarP(&filterOpts.output, "write", "w", "", "output unified2 file (required, - for stdout)")
	filterCmd.Flags().BoolVar(&filterOpts.append, "append", false, "append instead of truncating")
	filterCmd.MarkFlagRequired("write")
}

func runFilter(ctx context.Context, c *config.Config, path, output string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w, err := unified2.CreateWriter(c.Writer.Backend, output, c.Writer.Append)
	if err != nil {
		return err
	}
	n := 0
	err = forEach(ctx, c, path, func(e *unified2.Entry) error {
		if err := w.WriteEntry(e); err != nil {
			return err
		}
		n++
		return nil
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if output != "-" {
		fmt.Fprintf(out, "wrote %d entries to %s\n", n, output)
	}
	return nil
}
