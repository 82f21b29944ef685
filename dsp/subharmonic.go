package dsp

import (
	"math"

	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
)

// PLL controller constants. Small gains with a clamped integrator keep
// the loop stable at audio rates; the correction is scaled to Hz before
// being clamped to the trackable range.
const (
	pllProportionalGain = 0.01
	pllIntegralGain     = 0.001
	pllIntegratorLimit  = 100.0
	pllCorrectionScale  = 1000.0
	pllMinFreq          = 20.0
	pllMaxFreq          = 1000.0
	pllFreqSmoothing    = 0.995
)

// SubharmonicTracker derives phase-locked sub-octave partials from an
// input signal. A naive sub-oscillator slaved to the nominal frequency
// drifts audibly out of phase over long notes; the tracker instead runs
// a phase-locked loop: a quadrature phase detector against the current
// fundamental phase drives a PI controller, the corrected frequency is
// heavily smoothed, and a second "locked" phase is integrated from the
// smoothed frequency. Sub-multiple sines (1/2 and 1/4 of the locked
// phase) are mixed at fixed weights, optionally routed through a
// low-shelf for bass enhancement, and cross-faded against the dry input.
type SubharmonicTracker struct {
	sampleRate float64
	freq       float64

	mix             float64
	bassEnhancement float64
	pllEnabled      bool

	phase        float64
	lockedPhase  float64
	integrator   float64
	smoothedFreq float64
	lastError    float64
	primed       bool

	bassFilter Biquad
}

// NewSubharmonicTracker returns a tracker at the given sample rate with
// the PLL disabled, mix 0.5, and no bass enhancement.
func NewSubharmonicTracker(sampleRate float64) *SubharmonicTracker {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	t := &SubharmonicTracker{
		sampleRate: sampleRate,
		freq:       440,
		mix:        0.5,
	}
	t.bassFilter.DesignLowShelf(100, 4, sampleRate, 0.5)
	return t
}

// SetFrequency sets the nominal fundamental, clamped to the trackable
// range.
func (t *SubharmonicTracker) SetFrequency(freq float64) {
	t.freq = mathutil.Clamp(freq, pllMinFreq, pllMaxFreq)
}

// SetMix sets the wet/dry cross-fade in [0, 1].
func (t *SubharmonicTracker) SetMix(mix float64) {
	t.mix = mathutil.Clamp(mix, 0, 1)
}

// SetBassEnhancement sets the low-shelf routing amount in [0, 1].
// Any positive amount routes the subharmonic layer through the shelf.
func (t *SubharmonicTracker) SetBassEnhancement(amount float64) {
	t.bassEnhancement = mathutil.Clamp(amount, 0, 1)
}

// EnablePLL turns closed-loop phase tracking on or off. When disabled
// the phase advances from the nominal frequency with no correction.
func (t *SubharmonicTracker) EnablePLL(enable bool) {
	t.pllEnabled = enable
}

// PhaseError returns the most recent wrapped phase-detector output.
func (t *SubharmonicTracker) PhaseError() float64 {
	return t.lastError
}

// TrackedFrequency returns the smoothed frequency driving the locked
// phase.
func (t *SubharmonicTracker) TrackedFrequency() float64 {
	return t.smoothedFreq
}

// Process runs the tracker over src, writing the wet/dry blend to dst.
// The slices may alias.
func (t *SubharmonicTracker) Process(dst, src []float64) {
	for i, x := range src {
		dst[i] = t.processSample(x)
	}
}

func (t *SubharmonicTracker) processSample(x float64) float64 {
	// The smoothed frequency starts on the nominal the first time the
	// tracker runs, so the locked phase never decays in from a stale
	// value set before SetFrequency was called.
	if !t.primed {
		t.smoothedFreq = t.freq
		t.primed = true
	}

	tracked := t.freq
	if t.pllEnabled {
		// Quadrature phase detection against sine/cosine references
		// at the current fundamental phase.
		err := mathutil.WrapPhase(math.Atan2(x*math.Sin(t.phase), x*math.Cos(t.phase)))
		t.lastError = err

		correction := pllProportionalGain*err + pllIntegralGain*t.integrator
		t.integrator = mathutil.Clamp(t.integrator+err, -pllIntegratorLimit, pllIntegratorLimit)

		tracked = mathutil.Clamp(t.freq+correction*pllCorrectionScale, pllMinFreq, pllMaxFreq)
	}

	t.phase = mathutil.WrapPhase2Pi(t.phase + 2*math.Pi*tracked/t.sampleRate)

	// The locked phase integrates a heavily smoothed frequency so the
	// subharmonic layer does not jitter with per-sample detector noise.
	t.smoothedFreq = pllFreqSmoothing*t.smoothedFreq + (1-pllFreqSmoothing)*tracked

	// The locked phase is divided by 2 and 4 below, so it must wrap at
	// 8*pi, the common period of both divisions. Wrapping at 2*pi would
	// fold sin(phase/2) into its positive arch only.
	t.lockedPhase += 2 * math.Pi * t.smoothedFreq / t.sampleRate
	if t.lockedPhase >= 8*math.Pi {
		t.lockedPhase -= 8 * math.Pi
	}

	wet := 0.7*math.Sin(t.lockedPhase/2) + 0.3*math.Sin(t.lockedPhase/4)
	if t.bassEnhancement > 0 {
		wet = t.bassFilter.Process(wet)
	}
	return x*(1-t.mix) + wet*t.mix
}

// Reset zeroes both phase accumulators, the integrator, and the bass
// filter, returning the tracker to the state it had before the first
// Process call.
func (t *SubharmonicTracker) Reset() {
	t.phase = 0
	t.lockedPhase = 0
	t.integrator = 0
	t.lastError = 0
	t.smoothedFreq = t.freq
	t.primed = false
	t.bassFilter.Reset()
}
