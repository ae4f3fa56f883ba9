// Command haptic-render renders the haptic synthesizer to a WAV file
// for offline inspection, mirroring cmd/piano-render's flag-driven
// render-to-WAV shape.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/suke-go/bbhacker-core/config"
	"github.com/suke-go/bbhacker-core/internal/audioio"
	"github.com/suke-go/bbhacker-core/synth"
)

func main() {
	sessionPath := flag.String("session", "", "Session config JSON path (optional)")
	signalType := flag.String("signal", "sine", "Signal type: sine, band_noise, snow")
	frequency := flag.Float64("frequency", 30, "Drive frequency in Hz")
	amplitude := flag.Float64("amplitude", 0.5, "Amplitude in [0,1]")
	velocity := flag.Float64("velocity", 0.0, "Velocity in [0,1] (snow only)")
	bandwidth := flag.Float64("bandwidth", 20, "Band-limited noise bandwidth in Hz")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	seed := flag.Int64("seed", 1, "Noise generator seed")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	sess := config.DefaultSession()
	if *sessionPath != "" {
		loaded, err := config.LoadJSON(*sessionPath)
		if err != nil {
			die("failed to load session config %q: %v", *sessionPath, err)
		}
		sess = loaded
	}
	sess.SampleRateAudio = float64(*sampleRate)
	sess.Frequency = float32(*frequency)
	sess.Amplitude = float32(*amplitude)
	sess.Velocity = float32(*velocity)
	sess.NoiseBandwidth = float32(*bandwidth)

	sigType, err := parseSignalType(*signalType)
	if err != nil {
		die("%v", err)
	}
	sess.SignalType = sigType

	s, err := sess.NewSynthesizer(*seed)
	if err != nil {
		die("failed to build synthesizer: %v", err)
	}
	s.SetPlaying(true)

	numFrames := int(*duration * float64(*sampleRate))
	if numFrames < 1 {
		numFrames = 1
	}

	fmt.Printf("Rendering %s at %.1f Hz, %.2fs at %d Hz -> %s\n", *signalType, *frequency, *duration, *sampleRate, *output)

	stereo := s.Render(numFrames)
	if err := audioio.WriteStereoInterleaved(*output, stereo, *sampleRate); err != nil {
		die("failed to write wav: %v", err)
	}
}

func parseSignalType(s string) (synth.SignalType, error) {
	switch s {
	case "sine":
		return synth.SignalSine, nil
	case "band_noise":
		return synth.SignalBandNoise, nil
	case "snow":
		return synth.SignalSnow, nil
	default:
		return 0, fmt.Errorf("unknown signal type %q", s)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
