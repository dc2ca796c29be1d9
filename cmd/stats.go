package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/filter"
	"firestige.xyz/u2kit/internal/metrics"
	"firestige.xyz/u2kit/internal/unified2"
)

var statsPrometheus bool

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Count the entries of a unified2 log",
	Long: `Read a unified2 log and count the entries that pass the filters, per
record type. With --prometheus the read counters are printed in the
Prometheus text format instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd.Context(), cfg, args[0], statsPrometheus, cmd.OutOrStdout())
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsPrometheus, "prometheus", false, "print metrics in Prometheus text format")
}

func runStats(ctx context.Context, c *config.Config, path string, prom bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	counter := filter.NewCounterFilter()
	err := forEach(ctx, c, path, func(*unified2.Entry) error { return nil }, counter)
	if err != nil {
		return err
	}
	if prom {
		return metrics.WriteText(out, prometheus.DefaultGatherer)
	}

	counts := counter.Counts()
	order := make([]core.RecordType, 0, len(counts))
	for t := range counts {
		order = append(order, t)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tID\tCOUNT")
	for _, t := range order {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", t, uint32(t), counts[t])
	}
	fmt.Fprintf(tw, "total\t\t%d\n", counter.GetCount())
	return tw.Flush()
}
