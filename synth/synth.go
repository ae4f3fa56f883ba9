package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/suke-go/bbhacker-core/dsp"
)

// SignalType selects the generator branch, per spec §4.3.
type SignalType int

const (
	SignalSine SignalType = iota
	SignalBandNoise
	SignalSnow
)

// Channel selects an output channel for the stereo gating controls.
type Channel int

const (
	ChannelLeft Channel = iota
	ChannelRight
)

// Snow band centers and bandwidths, per the table in spec §4.3.
const (
	snowLowHz, snowLowBW   = 20.0, 8.0
	snowMidHz, snowMidBW   = 32.0, 15.0
	snowHighHz, snowHighBW = 100.0, 40.0
)

// bandNoiseDefaultBW is the default band-limited-noise bandwidth.
const bandNoiseDefaultBW = 20.0

// Synthesizer produces stereo haptic drive samples and exports its
// sine-oscillator phase as the AMHIC canceller's reference. Control
// parameters (frequency, amplitude, gains, enables, signal type,
// velocity, noise bandwidth) live in atomic cells so the control
// domain can mutate them without touching the audio domain's hot
// loop; oscillator and filter state belong exclusively to the audio
// domain, mirroring the teacher's Piano.Process ownership split.
type Synthesizer struct {
	sampleRate float64

	frequency      *dsp.AtomicFloat32
	amplitude      *dsp.AtomicFloat32
	velocity       *dsp.AtomicFloat32
	noiseBandwidth *dsp.AtomicFloat32
	signalType     *dsp.AtomicFloat32 // stores SignalType as a float32 tag
	playing        *dsp.AtomicBool

	ch1Enable, ch2Enable         *dsp.AtomicBool
	ch1Gain, ch2Gain             *dsp.AtomicFloat32

	phase      float64
	phaseOut   *dsp.AtomicFloat64
	rng        *rand.Rand

	bandNoise resonator

	snowLow, snowMid, snowHigh resonator

	lastFreq, lastBW, lastSR float64
	snowCoeffsSet            bool
}

// NewSynthesizer creates a synthesizer rendering at sampleRate Hz,
// seeded from seed (grounded on irsynth's rand.New(rand.NewSource)
// idiom so noise generation is deterministic-but-varied per
// instance). sampleRate must be positive.
func NewSynthesizer(sampleRate float64, seed int64) (*Synthesizer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("synth: sample rate must be positive, got %v", sampleRate)
	}
	s := &Synthesizer{
		sampleRate:     sampleRate,
		frequency:      dsp.NewAtomicFloat32(30.0),
		amplitude:      dsp.NewAtomicFloat32(0.5),
		velocity:       dsp.NewAtomicFloat32(0.0),
		noiseBandwidth: dsp.NewAtomicFloat32(bandNoiseDefaultBW),
		signalType:     dsp.NewAtomicFloat32(float32(SignalSine)),
		playing:        dsp.NewAtomicBool(false),
		ch1Enable:      dsp.NewAtomicBool(true),
		ch2Enable:      dsp.NewAtomicBool(true),
		ch1Gain:        dsp.NewAtomicFloat32(1.0),
		ch2Gain:        dsp.NewAtomicFloat32(1.0),
		phaseOut:       dsp.NewAtomicFloat64(0),
		rng:            rand.New(rand.NewSource(seed)),
	}
	s.snowLow.setCoeffs(snowLowHz, snowLowBW, sampleRate)
	s.snowMid.setCoeffs(snowMidHz, snowMidBW, sampleRate)
	s.snowHigh.setCoeffs(snowHighHz, snowHighBW, sampleRate)
	s.bandNoise.setCoeffs(30.0, bandNoiseDefaultBW, sampleRate)
	s.lastFreq, s.lastBW, s.lastSR = 30.0, bandNoiseDefaultBW, sampleRate
	return s, nil
}

// SetFrequency updates the sine and band-noise bandpass centers; the
// band-noise coefficients are re-derived once, at the start of the
// next rendered buffer (never per-sample), and filter state is
// preserved per spec §4.3.
func (s *Synthesizer) SetFrequency(hz float32) {
	s.frequency.Store(hz)
}

// Frequency returns the current drive frequency.
func (s *Synthesizer) Frequency() float32 { return s.frequency.Load() }

// SetAmplitude sets the output amplitude, clamped to [0,1].
func (s *Synthesizer) SetAmplitude(a float32) {
	s.amplitude.Store(dsp.ClampF32(a, 0, 1))
}

// SetSignalType switches the generator branch.
func (s *Synthesizer) SetSignalType(t SignalType) {
	s.signalType.Store(float32(t))
}

// SignalType returns the active generator branch.
func (s *Synthesizer) SignalType() SignalType {
	return SignalType(s.signalType.Load())
}

// SetVelocity sets v in [0,1], used only by the Snow signal type.
func (s *Synthesizer) SetVelocity(v float32) {
	s.velocity.Store(dsp.ClampF32(v, 0, 1))
}

// SetNoiseBandwidth updates the band-limited-noise bandwidth.
func (s *Synthesizer) SetNoiseBandwidth(hz float32) {
	s.noiseBandwidth.Store(dsp.ClampF32(hz, 1, float32(s.sampleRate)*0.49))
}

// SetPlaying starts or stops output; while stopped, Render fills
// silence per spec §4.3.
func (s *Synthesizer) SetPlaying(playing bool) { s.playing.Store(playing) }

// Playing reports whether the synthesizer is currently producing
// output.
func (s *Synthesizer) Playing() bool { return s.playing.Load() }

// SetEnableChannel gates an output channel.
func (s *Synthesizer) SetEnableChannel(ch Channel, enable bool) {
	if ch == ChannelLeft {
		s.ch1Enable.Store(enable)
	} else {
		s.ch2Enable.Store(enable)
	}
}

// SetChannelGain sets a per-channel multiplier, clamped to [0,1].
func (s *Synthesizer) SetChannelGain(ch Channel, gain float32) {
	gain = dsp.ClampF32(gain, 0, 1)
	if ch == ChannelLeft {
		s.ch1Gain.Store(gain)
	} else {
		s.ch2Gain.Store(gain)
	}
}

// Phase returns the current sine-oscillator phase in [0, 2*pi), for
// the canceller to read at the sensor rate. The write happens inside
// the audio hot loop; per spec §4.3 this read may observe a value up
// to one audio-buffer-period stale.
func (s *Synthesizer) Phase() float64 { return s.phaseOut.Load() }

// Render allocates and fills numFrames stereo frames, matching the
// teacher's Piano.Process(numFrames int) []float32 convenience shape.
func (s *Synthesizer) Render(numFrames int) []float32 {
	buf := make([]float32, numFrames*2)
	s.RenderInto(buf)
	return buf
}

// RenderInto fills buf (numFrames*2 stereo-interleaved samples,
// len(buf) must be even) without allocating, for callers on the
// hard-real-time audio path.
func (s *Synthesizer) RenderInto(buf []float32) {
	n := len(buf) / 2
	if !s.playing.Load() {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	freq := float64(s.frequency.Load())
	amp := float64(s.amplitude.Load())
	sigType := SignalType(s.signalType.Load())
	noiseBW := float64(s.noiseBandwidth.Load())
	v := float64(s.velocity.Load())
	c1e, c2e := s.ch1Enable.Load(), s.ch2Enable.Load()
	c1g, c2g := float64(s.ch1Gain.Load()), float64(s.ch2Gain.Load())

	if freq != s.lastFreq || noiseBW != s.lastBW || s.sampleRate != s.lastSR {
		s.bandNoise.setCoeffs(freq, noiseBW, s.sampleRate)
		s.lastFreq, s.lastBW, s.lastSR = freq, noiseBW, s.sampleRate
	}

	dPhi := 2 * math.Pi * freq / s.sampleRate

	for i := 0; i < n; i++ {
		var sample float64
		switch sigType {
		case SignalBandNoise:
			white := s.rng.Float64()*2 - 1
			sample = amp * s.bandNoise.process(white) * 0.3
		case SignalSnow:
			sample = s.snowSample(amp, v)
		default:
			sample = amp * math.Sin(s.phase)
		}

		s.phase = dsp.WrapPhase(s.phase + dPhi)
		s.phaseOut.Store(s.phase)

		l, r := float32(0), float32(0)
		if c1e {
			l = float32(sample * c1g)
		}
		if c2e {
			r = float32(sample * c2g)
		}
		buf[2*i] = l
		buf[2*i+1] = r
	}
}

// snowSample synthesizes one sample of the three-band "snow texture"
// mix described in spec §4.3's table and mixing formula.
func (s *Synthesizer) snowSample(amp, v float64) float64 {
	low := s.snowLow.process(s.rng.Float64()*2 - 1)
	mid := s.snowMid.process(s.rng.Float64()*2 - 1)
	high := s.snowHigh.process(s.rng.Float64()*2 - 1)

	gLow := 0.5 + 0.3*v
	gMid := 0.2 + 0.5*v
	gHigh := 0.4 * v * v

	return amp * (low*gLow + mid*gMid + high*gHigh) * 0.25 * (0.5 + v)
}

// ResetFilters clears every bandpass filter's IIR state (not exposed
// on the control surface directly; no other synthesizer method calls
// it).
func (s *Synthesizer) ResetFilters() {
	s.bandNoise.reset()
	s.snowLow.reset()
	s.snowMid.reset()
	s.snowHigh.reset()
}
