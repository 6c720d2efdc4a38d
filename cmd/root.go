package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jsyn/assets"
	"jsyn/config"
	"jsyn/host"
	"jsyn/jsyn"
	"jsyn/logger"
	"jsyn/playback"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	example string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsyn [script]",
	Short: "Control audio playback from a script",
	Long: `jsyn runs control scripts that build audio nodes and play them on the
default output device. Each play returns a handle that can stop, pause,
resume or reset the sound while it plays.

Pass a script file, "-" to read from stdin, or --example to run one of the
embedded examples.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Int("sample-rate", 44100, "device sample rate")
	rootCmd.PersistentFlags().Duration("buffer", 100*time.Millisecond, "device buffer duration")
	rootCmd.PersistentFlags().Float64("volume", 0, "master volume, base 2 (0 is unity)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Local flags for the script runner
	rootCmd.Flags().StringVarP(&example, "example", "e", "", "run an embedded example script")

	// Bind flags to viper
	viper.BindPFlag("audio.sample_rate", rootCmd.PersistentFlags().Lookup("sample-rate"))
	viper.BindPFlag("audio.buffer", rootCmd.PersistentFlags().Lookup("buffer"))
	viper.BindPFlag("audio.volume", rootCmd.PersistentFlags().Lookup("volume"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if verbose {
		viper.Set("logging.level", "debug")
	}
}

// setup loads and validates the configuration and configures logging
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr); err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// openScript resolves the script source from the arguments
func openScript(args []string, stdin io.Reader) (io.ReadCloser, string, error) {
	switch {
	case example != "" && len(args) > 0:
		return nil, "", fmt.Errorf("--example and a script file are mutually exclusive")
	case example != "":
		src, err := assets.Script(example)
		if err != nil {
			return nil, "", err
		}
		return io.NopCloser(strings.NewReader(src)), "example:" + example, nil
	case len(args) == 0:
		return nil, "", nil
	case args[0] == "-":
		return io.NopCloser(stdin), "stdin", nil
	default:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("failed to open script: %w", err)
		}
		return f, args[0], nil
	}
}

// runScript executes a control script against the jsyn module
func runScript(cmd *cobra.Command, args []string) error {
	src, name, err := openScript(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if src == nil {
		return cmd.Help()
	}
	defer src.Close()

	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	// A failed open is cached by playback and surfaces on the script's first play.
	if _, err := playback.Init(cfg.Audio, playback.NewSpeakerDevice()); err != nil {
		slog.Warn("Audio device unavailable", slog.Any("error", err))
	}
	defer func() {
		if err := playback.Shutdown(); err != nil {
			slog.Warn("Failed to shut down audio session", slog.Any("error", err))
		}
	}()

	interp := host.NewInterp(jsyn.New(cfg.Audio.SampleRate, playback.Current), cmd.OutOrStdout())
	defer interp.Close()

	slog.Debug("Running script", slog.String("script", name))
	if err := interp.Exec(ctx, src); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, shutting down...")
			return nil
		}
		slog.Error("Script failed", slog.String("script", name), slog.Any("error", err))
		return err
	}

	return nil
}
