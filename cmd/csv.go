package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/render"
	"firestige.xyz/u2kit/internal/unified2"
)

var csvCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Print events as CSV",
	Long: `Print one CSV row per event: signature, generator, revision, the
address/port pairs, protocol and action. Packet records are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCSV(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

func runCSV(ctx context.Context, c *config.Config, path string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w := render.NewCSV(out)
	err := forEach(ctx, c, path, func(e *unified2.Entry) error {
		return w.Render(e)
	})
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}
