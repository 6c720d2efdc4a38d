package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"jsyn/config"
	"jsyn/logger"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Commands for managing and validating jsyn configuration.",
}

// configValidateCmd validates the current configuration
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the current configuration file, flags and environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Setup basic logging for validation
		if err := logger.Setup("info", "text", os.Stderr); err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}

		// Load configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Validate configuration
		if err := cfg.Validate(); err != nil {
			slog.Error("Configuration validation failed", slog.Any("error", err))
			return err
		}

		slog.Info("Configuration is valid")
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Configuration is valid")
		return nil
	},
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current configuration values from file, flags and environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Setup basic logging
		if err := logger.Setup("info", "text", os.Stderr); err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}

		// Load configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintf(w, "  Audio:\n")
	fmt.Fprintf(w, "    Sample Rate: %d\n", cfg.Audio.SampleRate)
	fmt.Fprintf(w, "    Buffer: %s\n", cfg.Audio.Buffer)
	fmt.Fprintf(w, "    Command Capacity: %d\n", cfg.Audio.CommandCapacity)
	fmt.Fprintf(w, "    Max Sounds: %d\n", cfg.Audio.MaxSounds)
	fmt.Fprintf(w, "    Volume: %g\n", cfg.Audio.Volume)
	fmt.Fprintf(w, "  Logging:\n")
	fmt.Fprintf(w, "    Level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "    Format: %s\n", cfg.Logging.Format)
}
