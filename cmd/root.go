// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/log"
)

var (
	// Global flags
	configFile string
	backend    string
	logLevel   string
	types      []string
	sids       []uint
	bpfExpr    string
	keepGoing  bool

	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "u2kit",
	Short: "u2kit - read, filter and rewrite unified2 IDS logs",
	Long: `u2kit reads unified2 alert logs written by IDS sensors.

It prints events and captured packets, converts them to CSV, JSON, YAML or
pcapng, splits large logs, and follows logs that are still being written.
Record types it does not decode are skipped by length.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file path")
	flags.StringVarP(&backend, "backend", "b", config.DefaultBackend, "source backend: stream, descriptor, memory or mmap")
	flags.StringVar(&logLevel, "log-level", "info", "log level")
	flags.StringSliceVarP(&types, "type", "t", nil, "only record types (name or number)")
	flags.UintSliceVar(&sids, "sid", nil, "only events with these signature ids, and their packets")
	flags.StringVar(&bpfExpr, "bpf", "", "only packets matching this BPF expression")
	flags.BoolVar(&keepGoing, "keep-going", false, "continue past partial packet records")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(pcapCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds cfg from the config file, the environment and any flag
// given explicitly on the command line, then sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := log.Init(c.Log); err != nil {
		return err
	}
	cfg = c
	return nil
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		c.Reader.Backend = backend
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("type") {
		c.Output.Filter.Types = types
	}
	if flags.Changed("sid") {
		c.Output.Filter.SIDs = c.Output.Filter.SIDs[:0]
		for _, sid := range sids {
			c.Output.Filter.SIDs = append(c.Output.Filter.SIDs, uint32(sid))
		}
	}
	if flags.Changed("bpf") {
		c.Output.Filter.BPF = bpfExpr
	}
	if flags.Changed("keep-going") {
		c.Reader.KeepGoing = keepGoing
	}
}
