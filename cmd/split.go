package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/split"
)

var splitOpts struct {
	prefix string
	count  int
}

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a unified2 log into numbered files",
	Long: `Copy the entries of a unified2 log into files named <prefix>_00000,
<prefix>_00001, ... holding at most --count entries each.

Examples:
  u2kit split -w /tmp/part -n 1000 unified2.log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("prefix") {
			cfg.Split.Prefix = splitOpts.prefix
		}
		if cmd.Flags().Changed("count") {
			cfg.Split.Count = splitOpts.count
		}
		return runSplit(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	splitCmd.Flags().StringVarP(&splitOpts.prefix, "prefix", "w", config.DefaultSplitPrefix, "output file prefix")
	splitCmd.Flags().IntVarP(&splitOpts.count, "count", "n", 0, "entries per file (0 for a single file)")
}

func runSplit(ctx context.Context, c *config.Config, path string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w := split.NewWriter(c.Writer.Backend, c.Split.Prefix, c.Split.Count)
	err := forEach(ctx, c, path, w.WriteEntry)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	for _, name := range w.Files() {
		fmt.Fprintln(out, name)
	}
	return nil
}
