package dsp

import (
	"math"

	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
)

// GlottalModel selects the pulse shape produced by a GlottalSource.
type GlottalModel int

const (
	// Rosenberg is the classic two-segment pulse: sinusoidal opening,
	// exponential return.
	Rosenberg GlottalModel = iota
	// LF is the Liljencrants-Fant asymmetric pulse.
	LF
	// Differentiated is the numerical derivative of the Rosenberg
	// pulse, used where the excitation feeds a resonator cascade that
	// expects flow derivative rather than flow.
	Differentiated
)

// GlottalSource generates a periodic glottal excitation waveform. The
// phase accumulator runs in [0, 1); pulse shape is controlled by the
// open quotient (fraction of the period the glottis is open), speed
// quotient, and return phase.
type GlottalSource struct {
	freq          float64
	sampleRate    float64
	model         GlottalModel
	openQuotient  float64
	speedQuotient float64
	returnPhase   float64
	phase         float64
	phaseInc      float64
}

// NewGlottalSource returns a source at 110 Hz, 44.1 kHz, Rosenberg model.
func NewGlottalSource() *GlottalSource {
	g := &GlottalSource{
		freq:          110,
		sampleRate:    44100,
		openQuotient:  0.5,
		speedQuotient: 0.5,
		returnPhase:   0.1,
	}
	g.updatePhaseIncrement()
	return g
}

// SetFrequency sets the fundamental, clamped to 20-1000 Hz.
func (g *GlottalSource) SetFrequency(f0 float64) {
	g.freq = mathutil.Clamp(f0, 20, 1000)
	g.updatePhaseIncrement()
}

// SetSampleRate sets the sample rate, clamped to 8-192 kHz.
func (g *GlottalSource) SetSampleRate(sr float64) {
	g.sampleRate = mathutil.Clamp(sr, 8000, 192000)
	g.updatePhaseIncrement()
}

// SetModel selects the pulse model.
func (g *GlottalSource) SetModel(m GlottalModel) {
	g.model = m
}

// SetPulseShape sets the open quotient (clamped 0.1-0.9), speed
// quotient (0.1-0.9), and return phase (0-0.5).
func (g *GlottalSource) SetPulseShape(openQuotient, speedQuotient, returnPhase float64) {
	g.openQuotient = mathutil.Clamp(openQuotient, 0.1, 0.9)
	g.speedQuotient = mathutil.Clamp(speedQuotient, 0.1, 0.9)
	g.returnPhase = mathutil.Clamp(returnPhase, 0, 0.5)
}

// Process generates one sample and advances the phase.
func (g *GlottalSource) Process() float64 {
	var out float64
	switch g.model {
	case LF:
		out = g.lfPulse(g.phase)
	case Differentiated:
		out = g.differentiatedPulse(g.phase)
	default:
		out = g.rosenbergPulse(g.phase)
	}
	g.phase += g.phaseInc
	if g.phase >= 1 {
		g.phase -= 1
	}
	return out
}

// ProcessBlock fills out with consecutive samples.
func (g *GlottalSource) ProcessBlock(out []float64) {
	for i := range out {
		out[i] = g.Process()
	}
}

// Reset returns the phase accumulator to zero.
func (g *GlottalSource) Reset() {
	g.phase = 0
}

func (g *GlottalSource) updatePhaseIncrement() {
	g.phaseInc = mathutil.Clamp(g.freq/g.sampleRate, 0, 1)
}

func (g *GlottalSource) rosenbergPulse(t float64) float64 {
	tOpen := g.openQuotient
	tReturn := tOpen + (1-g.openQuotient)*g.speedQuotient
	switch {
	case t < tOpen:
		return 0.5 * (1 - math.Cos(math.Pi*t/tOpen))
	case t < tReturn:
		return math.Exp(-3 * (t - tOpen) / (tReturn - tOpen))
	default:
		return 0
	}
}

func (g *GlottalSource) lfPulse(t float64) float64 {
	alpha := 1 / (g.openQuotient * g.openQuotient)
	epsilon := 1 / ((1 - g.openQuotient) * g.speedQuotient)

	tOpen := g.openQuotient
	tPeak := g.openQuotient * 0.7
	tReturn := tOpen + (1-tOpen)*0.9

	switch {
	case t < tPeak:
		return math.Pow(t/tPeak, alpha)
	case t < tOpen:
		return math.Pow(1-(t-tPeak)/(tOpen-tPeak), alpha)
	case t < tReturn:
		return math.Exp(-epsilon * (t - tOpen) / (tReturn - tOpen))
	default:
		return 0
	}
}

// differentiatedPulse is the analytic derivative of the Rosenberg
// segments, scaled down to excitation level. Differentiating segment by
// segment avoids the spike a finite difference produces when it
// straddles the closure discontinuity.
func (g *GlottalSource) differentiatedPulse(t float64) float64 {
	tOpen := g.openQuotient
	tReturn := tOpen + (1-g.openQuotient)*g.speedQuotient
	switch {
	case t < tOpen:
		return 0.5 * math.Pi / tOpen * math.Sin(math.Pi*t/tOpen) * 0.1
	case t < tReturn:
		return -3 / (tReturn - tOpen) * math.Exp(-3*(t-tOpen)/(tReturn-tOpen)) * 0.1
	default:
		return 0
	}
}
