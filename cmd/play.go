package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"jsyn/node"
	"jsyn/playback"

	"github.com/spf13/cobra"
)

var (
	playWave     string
	playHz       float64
	playDuration time.Duration
	playFile     string
)

// playCmd plays a single node without a script
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a tone or an audio file",
	Long: `Play a sine or saw tone, or a decoded mp3/wav/flac file, for a fixed
duration and then stop it. Ctrl-C stops playback early.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&playWave, "wave", "w", "sine", "waveform (sine, saw)")
	playCmd.Flags().Float64Var(&playHz, "hz", 440, "frequency in hertz")
	playCmd.Flags().DurationVarP(&playDuration, "duration", "d", 2*time.Second, "how long to play")
	playCmd.Flags().StringVarP(&playFile, "file", "f", "", "audio file to play instead of a tone")
}

// buildNode creates the node described by the play flags
func buildNode(wave string, hz float64, file string, sampleRate int) (node.Node, error) {
	if file != "" {
		s, err := node.Load(file)
		if err != nil {
			return nil, err
		}
		if rate := int(s.Format().SampleRate); rate != sampleRate {
			slog.Warn("Sample rate differs from device, playback speed will be off",
				slog.Int("file_rate", rate),
				slog.Int("device_rate", sampleRate))
		}
		return s, nil
	}

	if hz <= 0 {
		return nil, fmt.Errorf("frequency must be positive, got %g", hz)
	}

	switch wave {
	case "sine":
		return node.NewSine(hz, sampleRate), nil
	case "saw":
		return node.NewSaw(hz, sampleRate), nil
	default:
		return nil, fmt.Errorf("unknown waveform %q", wave)
	}
}

// runPlay schedules one node and stops it after the requested duration
func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	n, err := buildNode(playWave, playHz, playFile, cfg.Audio.SampleRate)
	if err != nil {
		return err
	}

	session, err := playback.Init(cfg.Audio, playback.NewSpeakerDevice())
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	defer playback.Shutdown()

	h, err := session.Play(n)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	timer := time.NewTimer(playDuration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, stopping playback...")
	case <-timer.C:
	}

	if err := h.Stop(); err != nil {
		return err
	}

	// Let the device pull one more block so the stop is observed before teardown.
	time.Sleep(cfg.Audio.Buffer)

	return nil
}
