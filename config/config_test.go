package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero sample rate",
			mutate:  func(c *Config) { c.Audio.SampleRate = 0 },
			wantErr: "audio.sample_rate",
		},
		{
			name:    "negative buffer",
			mutate:  func(c *Config) { c.Audio.Buffer = -time.Millisecond },
			wantErr: "audio.buffer",
		},
		{
			name:    "zero command capacity",
			mutate:  func(c *Config) { c.Audio.CommandCapacity = 0 },
			wantErr: "audio.command_capacity",
		},
		{
			name:    "zero max sounds",
			mutate:  func(c *Config) { c.Audio.MaxSounds = 0 },
			wantErr: "audio.max_sounds",
		},
		{
			name:   "attenuated volume",
			mutate: func(c *Config) { c.Audio.Volume = -2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error = %v", err)
				}
				return
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Config.Validate() error = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.wantErr {
				t.Errorf("Config.Validate() field = %s, want %s", cerr.Field, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JSYN_AUDIO_SAMPLE_RATE", "48000")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Buffer != 100*time.Millisecond {
		t.Errorf("buffer = %s, want 100ms", cfg.Audio.Buffer)
	}
	if cfg.Audio.CommandCapacity != 8 {
		t.Errorf("command capacity = %d, want 8", cfg.Audio.CommandCapacity)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("logging format = %s, want text", cfg.Logging.Format)
	}
}
