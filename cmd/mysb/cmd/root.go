package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=1.2.3".
var Version = "dev"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mysb",
	Short: "Firmware update bridge for MYSBootloader nodes over MQTT",
	Long: `mysb answers the over-the-air update requests of MySensors nodes running
MYSBootloader: node ID requests, firmware configuration requests and firmware
block requests, and queues bootloader commands for them.

Without a subcommand mysb runs the bridge, like "mysb serve".

Examples:
  mysb -c /etc/mysb/config.yaml          # Run the bridge
  mysb serve -v                          # Run with debug logging
  mysb inspect firmware.hex --block 0    # Show what a node would receive`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"configuration file (default ./config.yaml or /etc/mysb/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
