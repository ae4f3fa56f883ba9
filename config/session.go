// Package config loads the session configuration: starting values
// for the synthesizer and canceller control surfaces, read once at
// startup from a JSON file. Grounded on preset/json.go's
// File/ApplyFile shape (pointer fields so "absent" and "explicit
// zero" are distinguishable, each applied with its own validation
// returning a plain error).
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/suke-go/bbhacker-core/amhic"
	"github.com/suke-go/bbhacker-core/synth"
)

// Session holds the resolved startup configuration for one run of
// the core: the parameters from which NewSynthesizer and NewCanceller
// build a synthesizer and a canceller.
type Session struct {
	SampleRateAudio float64
	SampleRateSense float64

	Frequency      float32
	Amplitude      float32
	SignalType     synth.SignalType
	Velocity       float32
	NoiseBandwidth float32

	CompensationEnabled bool
	CompensationBackend amhic.Backend
	Harmonics           int
	Step               float32
}

// DefaultSession mirrors the default constants spread across the
// amhic and synth packages, collected here as the as-shipped preset.
func DefaultSession() Session {
	return Session{
		SampleRateAudio:     48000,
		SampleRateSense:     60,
		Frequency:           30,
		Amplitude:           0.5,
		SignalType:          synth.SignalSine,
		Velocity:            0,
		NoiseBandwidth:      20,
		CompensationEnabled: true,
		CompensationBackend: amhic.BackendNLMS,
		Harmonics:           amhic.DefaultHarmonics,
		Step:                0.05,
	}
}

// File is the JSON schema for a session config file. Pointer fields
// distinguish "not present in the file" from "explicitly set to the
// zero value", mirroring preset.File.
type File struct {
	SampleRateAudio *float64 `json:"sample_rate_audio"`
	SampleRateSense *float64 `json:"sample_rate_sense"`

	Frequency      *float32 `json:"frequency_hz"`
	Amplitude      *float32 `json:"amplitude"`
	SignalType     *string  `json:"signal_type"`
	Velocity       *float32 `json:"velocity"`
	NoiseBandwidth *float32 `json:"noise_bandwidth_hz"`

	CompensationEnabled *bool    `json:"compensation_enabled"`
	CompensationBackend *string  `json:"compensation_backend"`
	Harmonics           *int     `json:"harmonics"`
	Step                *float32 `json:"step"`
}

// LoadJSON reads a session config file and applies it on top of
// DefaultSession.
func LoadJSON(path string) (Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return Session{}, err
	}
	s := DefaultSession()
	if err := ApplyFile(&s, &f); err != nil {
		return Session{}, err
	}
	return s, nil
}

// ApplyFile applies a parsed file onto an existing session, validating
// each field it touches.
func ApplyFile(dst *Session, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination session")
	}
	if f == nil {
		return nil
	}

	if f.SampleRateAudio != nil {
		if *f.SampleRateAudio <= 0 {
			return fmt.Errorf("sample_rate_audio must be > 0")
		}
		dst.SampleRateAudio = *f.SampleRateAudio
	}
	if f.SampleRateSense != nil {
		if *f.SampleRateSense <= 0 {
			return fmt.Errorf("sample_rate_sense must be > 0")
		}
		dst.SampleRateSense = *f.SampleRateSense
	}
	if f.Frequency != nil {
		if *f.Frequency <= 0 {
			return fmt.Errorf("frequency_hz must be > 0")
		}
		dst.Frequency = *f.Frequency
	}
	if f.Amplitude != nil {
		if *f.Amplitude < 0 || *f.Amplitude > 1 {
			return fmt.Errorf("amplitude must be in [0,1]")
		}
		dst.Amplitude = *f.Amplitude
	}
	if f.SignalType != nil {
		t, err := parseSignalType(*f.SignalType)
		if err != nil {
			return err
		}
		dst.SignalType = t
	}
	if f.Velocity != nil {
		if *f.Velocity < 0 || *f.Velocity > 1 {
			return fmt.Errorf("velocity must be in [0,1]")
		}
		dst.Velocity = *f.Velocity
	}
	if f.NoiseBandwidth != nil {
		if *f.NoiseBandwidth <= 0 {
			return fmt.Errorf("noise_bandwidth_hz must be > 0")
		}
		dst.NoiseBandwidth = *f.NoiseBandwidth
	}
	if f.CompensationEnabled != nil {
		dst.CompensationEnabled = *f.CompensationEnabled
	}
	if f.CompensationBackend != nil {
		b, err := parseBackend(*f.CompensationBackend)
		if err != nil {
			return err
		}
		dst.CompensationBackend = b
	}
	if f.Harmonics != nil {
		if *f.Harmonics < 1 || *f.Harmonics > 8 {
			return fmt.Errorf("harmonics must be in [1,8]")
		}
		dst.Harmonics = *f.Harmonics
	}
	if f.Step != nil {
		if *f.Step <= amhic.StepMin || *f.Step > amhic.StepMax {
			return fmt.Errorf("step must be in (%v,%v]", amhic.StepMin, amhic.StepMax)
		}
		dst.Step = *f.Step
	}
	return nil
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
		return 0, fmt.Errorf("unknown signal_type %q", s)
	}
}

func parseBackend(s string) (amhic.Backend, error) {
	switch s {
	case "nlms":
		return amhic.BackendNLMS, nil
	case "notch":
		return amhic.BackendNotch, nil
	default:
		return 0, fmt.Errorf("unknown compensation_backend %q", s)
	}
}

// NewSynthesizer builds a synthesizer from the session, seeded from
// seed. Fails only if SampleRateAudio is non-positive, which
// ApplyFile/DefaultSession already guard against for a validated
// Session.
func (s Session) NewSynthesizer(seed int64) (*synth.Synthesizer, error) {
	syn, err := synth.NewSynthesizer(s.SampleRateAudio, seed)
	if err != nil {
		return nil, err
	}
	syn.SetFrequency(s.Frequency)
	syn.SetAmplitude(s.Amplitude)
	syn.SetSignalType(s.SignalType)
	syn.SetVelocity(s.Velocity)
	syn.SetNoiseBandwidth(s.NoiseBandwidth)
	return syn, nil
}

// NewCanceller builds a canceller from the session. Fails only if
// Harmonics or SampleRateSense are out of range, which
// ApplyFile/DefaultSession already guard against for a validated
// Session.
func (s Session) NewCanceller() (*amhic.Canceller, error) {
	c, err := amhic.NewCanceller(s.Harmonics, s.SampleRateSense)
	if err != nil {
		return nil, err
	}
	c.SetEnabled(s.CompensationEnabled)
	c.SetBackend(s.CompensationBackend)
	c.SetStep(s.Step)
	c.SetFrequency(s.Frequency)
	return c, nil
}
