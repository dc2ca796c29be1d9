package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/filter"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from --config, the environment and flags, and
report whether it is usable, without reading any log.

Examples:
  u2kit validate -c u2kit.yaml
  U2KIT_READER_BACKEND=mmap u2kit validate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cfg, cmd.OutOrStdout())
	},
}

func runValidate(c *config.Config, out io.Writer) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	filters, err := filter.FromConfig(c.Output.Filter)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	names := make([]string, 0, len(filters))
	for _, f := range filters {
		names = append(names, fmt.Sprintf("%T", f))
	}
	fmt.Fprintf(out, "VALID: reader %s, writer %s, format %s, %d filter(s)",
		c.Reader.Backend, c.Writer.Backend, c.Output.Format, len(filters))
	if len(names) > 0 {
		fmt.Fprintf(out, " [%s]", strings.Join(names, ", "))
	}
	fmt.Fprintln(out)
	return nil
}
