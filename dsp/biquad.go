// Package dsp provides the real-time signal primitives shared by the
// synthesis methods: biquad resonators, glottal excitation, the
// subharmonic phase-locked loop, a fixed-size real FFT, spectral
// enhancement, and parameter smoothing. Nothing in this package
// allocates or blocks inside a processing call; all working buffers
// are sized at construction.
package dsp

import "math"

// Biquad is a single second-order IIR section in direct form I.
// Coefficients are normalized so a0 = 1; the default zero value passes
// input through unchanged once designed (b0=1).
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// NewBiquad returns a unity pass-through filter.
func NewBiquad() *Biquad {
	return &Biquad{b0: 1}
}

// Reset zeroes the input and output delay lines.
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// passThrough installs identity coefficients. Used when a design is
// asked for degenerate parameters: rendering must never divide by zero
// or halt mid-stream.
func (f *Biquad) passThrough() {
	f.b0, f.b1, f.b2, f.a1, f.a2 = 1, 0, 0, 0, 0
}

// DesignBandpass computes bandpass coefficients (0 dB peak gain) from
// the audio EQ cookbook. bandwidth is expressed in octaves. Degenerate input
// (sample rate, frequency, or bandwidth <= 0, or frequency at or above
// Nyquist) yields unity pass-through.
func (f *Biquad) DesignBandpass(freq, bandwidth, sampleRate float64) {
	if sampleRate <= 0 || freq <= 0 || bandwidth <= 0 || freq >= sampleRate/2 {
		f.passThrough()
		return
	}
	omega := 2 * math.Pi * freq / sampleRate
	sinw := math.Sin(omega)
	alpha := sinw * math.Sinh(math.Ln2/2*bandwidth*omega/sinw)

	a0 := 1 + alpha
	f.b0 = alpha / a0
	f.b1 = 0
	f.b2 = -alpha / a0
	f.a1 = -2 * math.Cos(omega) / a0
	f.a2 = (1 - alpha) / a0
}

// DesignLowShelf computes low-shelf coefficients (audio EQ cookbook)
// for bass enhancement. Degenerate input yields unity pass-through.
func (f *Biquad) DesignLowShelf(freq, gainDB, sampleRate, q float64) {
	if sampleRate <= 0 || freq <= 0 || q <= 0 || freq >= sampleRate/2 {
		f.passThrough()
		return
	}
	a := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * freq / sampleRate
	cosw := math.Cos(omega)
	alpha := math.Sin(omega) / 2 * math.Sqrt((a+1/a)*(1/q-1)+2)
	sqrtA := math.Sqrt(a)

	b0 := a * ((a + 1) - (a-1)*cosw + 2*sqrtA*alpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosw)
	b2 := a * ((a + 1) - (a-1)*cosw - 2*sqrtA*alpha)
	a0 := (a + 1) + (a-1)*cosw + 2*sqrtA*alpha
	a1 := -2 * ((a - 1) + (a+1)*cosw)
	a2 := (a + 1) + (a-1)*cosw - 2*sqrtA*alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// SetCoefficients installs raw normalized coefficients.
func (f *Biquad) SetCoefficients(b0, b1, b2, a1, a2 float64) {
	f.b0, f.b1, f.b2, f.a1, f.a2 = b0, b1, b2, a1, a2
}

// Process filters one sample.
func (f *Biquad) Process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2 = f.x1
	f.x1 = x
	f.y2 = f.y1
	f.y1 = y
	return y
}

// ProcessBlock filters src into dst. dst and src may be the same slice.
func (f *Biquad) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = f.Process(x)
	}
}

// FormantResonator is a two-pole resonator in the Klatt form, tuned by
// center frequency and bandwidth in Hz. The feed-forward gain is
// a = 1 - b - c, which pins the DC response at unity: energy away from
// the resonance passes through near flat instead of being notched out,
// so several resonators in series keep the overall signal level while
// each adds its own peak. A 0 dB-peak bandpass would instead attenuate
// everything outside the intersection of the bands and a cascade of
// disjoint formants would go silent.
type FormantResonator struct {
	a, b, c float64
	y1, y2  float64
}

// SetParameters retunes the resonator. Degenerate parameters (sample
// rate, frequency, or bandwidth <= 0, or frequency at or above Nyquist)
// yield unity pass-through.
func (r *FormantResonator) SetParameters(freq, bandwidth, sampleRate float64) {
	if sampleRate <= 0 || freq <= 0 || bandwidth <= 0 || freq >= sampleRate/2 {
		r.a, r.b, r.c = 1, 0, 0
		return
	}
	rr := math.Exp(-math.Pi * bandwidth / sampleRate)
	r.c = -rr * rr
	r.b = 2 * rr * math.Cos(2*math.Pi*freq/sampleRate)
	r.a = 1 - r.b - r.c
}

// Process filters one sample through the resonator.
func (r *FormantResonator) Process(x float64) float64 {
	y := r.a*x + r.b*r.y1 + r.c*r.y2
	r.y2 = r.y1
	r.y1 = y
	return y
}

// ProcessBlock filters src into dst. The slices may alias.
func (r *FormantResonator) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = r.Process(x)
	}
}

// Reset zeroes the filter state.
func (r *FormantResonator) Reset() {
	r.y1, r.y2 = 0, 0
}
