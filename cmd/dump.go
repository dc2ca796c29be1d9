package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/inspect"
	"firestige.xyz/u2kit/internal/render"
	"firestige.xyz/u2kit/internal/unified2"
)

var dumpOpts struct {
	count  int
	decode bool
	format string
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the entries of a unified2 log",
	Long: `Print every event and packet in a unified2 log.

Use "-" to read standard input.

Examples:
  u2kit dump /var/log/snort/unified2.log
  u2kit dump -n 10 --decode unified2.log
  u2kit dump --format json --sid 2100498 unified2.log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyOutputFlags(cmd, cfg)
		return runDump(cmd.Context(), cfg, args[0], dumpOpts.count, cmd.OutOrStdout())
	},
}

func init() {
	dumpCmd.Flags().IntVarP(&dumpOpts.count, "count", "n", 0, "stop after this many entries (0 for all)")
	dumpCmd.Flags().BoolVar(&dumpOpts.decode, "decode", false, "decode packet data into protocol layers")
	dumpCmd.Flags().StringVarP(&dumpOpts.format, "format", "f", "text", "output format: text, json or yaml")
}

func applyOutputFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("decode") {
		c.Output.Decode = dumpOpts.decode
	}
	if cmd.Flags().Changed("format") {
		c.Output.Format = dumpOpts.format
	}
}

func newRenderer(c *config.Config, format string, out io.Writer) (render.Renderer, error) {
	var opts render.Options
	if c.Output.Decode {
		opts.Inspector = inspect.NewInspector()
	}
	return render.New(format, out, opts)
}

func runDump(ctx context.Context, c *config.Config, path string, count int, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := newRenderer(c, c.Output.Format, out)
	if err != nil {
		return err
	}
	n := 0
	err = forEach(ctx, c, path, func(e *unified2.Entry) error {
		if err := r.Render(e); err != nil {
			return err
		}
		n++
		if count > 0 && n >= count {
			return errLimit
		}
		return nil
	})
	if ferr := r.Flush(); err == nil {
		err = ferr
	}
	return err
}
