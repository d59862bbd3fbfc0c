package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mstovari/framstore/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "framstore",
	Short: "framstore - rotating-slot record store for FRAM-class NVM",
	Long: `framstore persists one fixed-size record into a small non-volatile
memory region using rotating slots, CRC integrity checks and a
payload-then-header commit that survives power loss.

Without hardware attached, the record lives on an emulated device
(in-memory, file-backed, pebble-backed, or a simulated MB85RS SPI part).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a framstore.yaml configuration file")
	flags.String("device", "", "Device kind: mem, file, pebble or sim (overrides config)")
	flags.String("path", "", "Device image path for the file and pebble kinds (overrides config)")
	flags.Uint32("size", 0, "Device capacity in bytes (overrides config)")
	flags.Uint32("base", 0, "Base address of slot 0 (overrides config)")
	flags.Int("slots", 0, "Number of rotating slots (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// resolveConfig loads the configuration file (or the defaults) and
// applies flag overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.DefaultConfig()

	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if kind, _ := flags.GetString("device"); kind != "" {
		cfg.Device.Kind = kind
	}

	if path, _ := flags.GetString("path"); path != "" {
		cfg.Device.Path = path
	}

	if size, _ := flags.GetUint32("size"); size != 0 {
		cfg.Device.Size = size
	}

	if base, _ := flags.GetUint32("base"); base != 0 {
		cfg.Store.BaseAddress = base
	}

	if slots, _ := flags.GetInt("slots"); slots != 0 {
		cfg.Store.Slots = slots
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}

	return cfg, nil
}
