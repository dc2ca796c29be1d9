package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/export"
	"firestige.xyz/u2kit/internal/source"
	"firestige.xyz/u2kit/internal/unified2"
)

var pcapOutput string

var pcapCmd = &cobra.Command{
	Use:   "pcap <file>",
	Short: "Export captured packets as pcapng",
	Long: `Write the packet records of a unified2 log to a pcapng file, one
interface per link type. Events are not exported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPcap(cmd.Context(), cfg, args[0], pcapOutput, cmd.OutOrStdout())
	},
}

func init() {
	pcapCmd.Flags().StringVarP(&pcapOutput, "write", "w", "", "pcapng output file (required)")
	pcapCmd.MarkFlagRequired("write")
}

func runPcap(ctx context.Context, c *config.Config, path, output string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sink, err := source.Create(c.Writer.Backend, output, false)
	if err != nil {
		return err
	}
	w := export.NewPcapWriter(sink)

	n := 0
	err = forEach(ctx, c, path, func(e *unified2.Entry) error {
		ok, err := w.WriteEntry(e)
		if ok {
			n++
		}
		return err
	})
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d packets to %s\n", n, output)
	return nil
}
