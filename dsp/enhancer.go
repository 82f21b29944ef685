package dsp

import (
	"math"

	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
)

// DefaultEnhancerSize is the analysis frame length used by the
// synthesis engine.
const DefaultEnhancerSize = 2048

// SpectralEnhancer brightens harmonic peaks with frame-based
// analysis/resynthesis. Input accumulates in a ring; every hop
// (size/4, 75% overlap) a Hann-windowed frame is transformed, bins
// whose magnitude stands above their neighborhood mean are boosted,
// and the frame is rebuilt with the original phase and overlap-added
// into an output ring. Output lags input by one frame.
type SpectralEnhancer struct {
	fft  *FFT
	size int
	hop  int

	amount float64
	focus  float64

	window  []float64
	inRing  []float64
	outRing []float64
	frame   []float64
	bins    []complex128
	mags    []float64

	inPos    int
	outPos   int
	hopCount int
	olaGain  float64
}

// NewSpectralEnhancer builds an enhancer with the given frame size,
// which must be a power of two.
func NewSpectralEnhancer(size int) (*SpectralEnhancer, error) {
	fft, err := NewFFT(size)
	if err != nil {
		return nil, err
	}

	window := make([]float64, size)
	var windowPower float64
	for i := range window {
		// Periodic Hann keeps the overlap-add sum constant.
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size)))
		windowPower += window[i] * window[i]
	}
	hop := size / 4

	return &SpectralEnhancer{
		fft:     fft,
		size:    size,
		hop:     hop,
		amount:  0,
		focus:   0.5,
		window:  window,
		inRing:  make([]float64, size),
		outRing: make([]float64, size),
		frame:   make([]float64, size),
		bins:    make([]complex128, fft.Bins()),
		mags:    make([]float64, fft.Bins()),
		olaGain: float64(hop) / windowPower,
	}, nil
}

// SetAmount sets the enhancement strength, clamped to [0, 1]. Zero
// leaves the spectrum untouched.
func (e *SpectralEnhancer) SetAmount(amount float64) {
	e.amount = mathutil.Clamp(amount, 0, 1)
}

// SetFocus sets the upper edge of the band eligible for boosting as a
// fraction of the spectrum, clamped to [0, 1]. Low values restrict
// enhancement to the lowest harmonics; 1 opens the full range.
func (e *SpectralEnhancer) SetFocus(focus float64) {
	e.focus = mathutil.Clamp(focus, 0, 1)
}

// Process runs buf through the analysis/resynthesis chain in place.
func (e *SpectralEnhancer) Process(buf []float64) {
	for i, x := range buf {
		e.inRing[e.inPos] = x
		e.inPos++
		if e.inPos == e.size {
			e.inPos = 0
		}
		e.hopCount++
		if e.hopCount == e.hop {
			e.hopCount = 0
			e.processFrame()
		}

		buf[i] = e.outRing[e.outPos]
		e.outRing[e.outPos] = 0
		e.outPos++
		if e.outPos == e.size {
			e.outPos = 0
		}
	}
}

func (e *SpectralEnhancer) processFrame() {
	// Oldest sample in the ring sits at the current write position.
	for i := 0; i < e.size; i++ {
		j := e.inPos + i
		if j >= e.size {
			j -= e.size
		}
		e.frame[i] = e.inRing[j] * e.window[i]
	}

	e.fft.Forward(e.bins, e.frame)
	e.enhanceSpectrum()
	e.fft.Inverse(e.frame, e.bins)

	for i := 0; i < e.size; i++ {
		j := e.outPos + i
		if j >= e.size {
			j -= e.size
		}
		e.outRing[j] += e.frame[i] * e.window[i] * e.olaGain
	}
}

func (e *SpectralEnhancer) enhanceSpectrum() {
	if e.amount <= 0 {
		return
	}

	n := len(e.bins)
	for i := 0; i < n; i++ {
		e.mags[i] = cmplxAbs(e.bins[i])
	}

	boost := 1 + e.amount*0.5
	hiBin := 1 + int(e.focus*float64(n-2))

	for i := 1; i <= hiBin && i < n-1; i++ {
		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		hi := i + 2
		if hi > n-1 {
			hi = n - 1
		}
		var sum float64
		var count int
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			sum += e.mags[j]
			count++
		}
		mean := sum / float64(count)
		if e.mags[i] > mean {
			// Scale the complex bin directly so the phase is
			// carried through unchanged.
			e.bins[i] = complex(real(e.bins[i])*boost, imag(e.bins[i])*boost)
		}
	}
}

// Reset clears all accumulated state.
func (e *SpectralEnhancer) Reset() {
	for i := range e.inRing {
		e.inRing[i] = 0
		e.outRing[i] = 0
	}
	e.inPos = 0
	e.outPos = 0
	e.hopCount = 0
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
