package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Audio device and playback configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// AudioConfig holds device and playback configuration
type AudioConfig struct {
	SampleRate      int           `mapstructure:"sample_rate"`
	Buffer          time.Duration `mapstructure:"buffer"`
	CommandCapacity int           `mapstructure:"command_capacity"`
	MaxSounds       int           `mapstructure:"max_sounds"`
	Volume          float64       `mapstructure:"volume"` // base 2, 0 is unity gain
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:      44100,
			Buffer:          100 * time.Millisecond,
			CommandCapacity: 8,
			MaxSounds:       128,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	def := Default()

	// Set defaults
	viper.SetDefault("audio.sample_rate", def.Audio.SampleRate)
	viper.SetDefault("audio.buffer", def.Audio.Buffer.String())
	viper.SetDefault("audio.command_capacity", def.Audio.CommandCapacity)
	viper.SetDefault("audio.max_sounds", def.Audio.MaxSounds)
	viper.SetDefault("audio.volume", def.Audio.Volume)
	viper.SetDefault("logging.level", def.Logging.Level)
	viper.SetDefault("logging.format", def.Logging.Format)

	// Read config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.jsyn")
	viper.AddConfigPath("/etc/jsyn")

	// Allow environment variables
	viper.SetEnvPrefix("JSYN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Info("Using config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return &ConfigError{Field: "audio.sample_rate", Message: "sample rate must be positive"}
	}
	if c.Audio.Buffer <= 0 {
		return &ConfigError{Field: "audio.buffer", Message: "buffer duration must be positive"}
	}
	if c.Audio.CommandCapacity <= 0 {
		return &ConfigError{Field: "audio.command_capacity", Message: "command capacity must be positive"}
	}
	if c.Audio.MaxSounds <= 0 {
		return &ConfigError{Field: "audio.max_sounds", Message: "max sounds must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
