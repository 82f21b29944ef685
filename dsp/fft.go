package dsp

import (
	"fmt"
	"math"

	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
)

// FFT is a fixed-size radix-2 Cooley-Tukey transform for real signals.
// The bit-reversal permutation and per-stage twiddle factors are
// precomputed at construction; Forward and Inverse reuse internal split
// real/imaginary buffers and never allocate.
type FFT struct {
	size  int
	perm  []int
	twRe  [][]float64 // twiddle factors per stage, real parts
	twIm  [][]float64 // twiddle factors per stage, imaginary parts
	bufRe []float64
	bufIm []float64
}

// NewFFT builds a transform of the given size. The size must be a
// power of two >= 2; anything else is a programmer error and fails
// fast.
func NewFFT(size int) (*FFT, error) {
	if size < 2 || !mathutil.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("fft: size %d is not a power of two", size)
	}

	bits := 0
	for v := size; v > 1; v >>= 1 {
		bits++
	}
	perm := make([]int, size)
	for i := 0; i < size; i++ {
		perm[i] = bitReverse(i, bits)
	}

	var twRe, twIm [][]float64
	for span := 2; span <= size; span *= 2 {
		half := span / 2
		re := make([]float64, half)
		im := make([]float64, half)
		for k := 0; k < half; k++ {
			angle := -2 * math.Pi * float64(k) / float64(span)
			re[k] = math.Cos(angle)
			im[k] = math.Sin(angle)
		}
		twRe = append(twRe, re)
		twIm = append(twIm, im)
	}

	return &FFT{
		size:  size,
		perm:  perm,
		twRe:  twRe,
		twIm:  twIm,
		bufRe: make([]float64, size),
		bufIm: make([]float64, size),
	}, nil
}

// Size returns the transform length.
func (f *FFT) Size() int {
	return f.size
}

// Bins returns the number of unique bins of the real forward
// transform, size/2 + 1.
func (f *FFT) Bins() int {
	return f.size/2 + 1
}

func bitReverse(x, bits int) int {
	var result int
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

// transform runs the in-place decimation-in-time butterflies over the
// internal buffers, which must already be bit-reverse permuted.
func (f *FFT) transform() {
	n := f.size
	for stage, span := 0, 2; span <= n; stage, span = stage+1, span*2 {
		half := span / 2
		twRe := f.twRe[stage]
		twIm := f.twIm[stage]
		for start := 0; start < n; start += span {
			for k := 0; k < half; k++ {
				i := start + k
				j := i + half
				tr := twRe[k]*f.bufRe[j] - twIm[k]*f.bufIm[j]
				ti := twRe[k]*f.bufIm[j] + twIm[k]*f.bufRe[j]
				f.bufRe[j] = f.bufRe[i] - tr
				f.bufIm[j] = f.bufIm[i] - ti
				f.bufRe[i] += tr
				f.bufIm[i] += ti
			}
		}
	}
}

// Forward transforms a real frame of length Size and writes the first
// size/2+1 complex bins to dst (the remaining bins are the conjugate
// mirror and carry no information). dst must have length Bins; src
// must have length Size.
func (f *FFT) Forward(dst []complex128, src []float64) {
	n := f.size
	for i := 0; i < n; i++ {
		j := f.perm[i]
		f.bufRe[j] = src[i]
		f.bufIm[j] = 0
	}
	f.transform()
	for i := 0; i < n/2+1; i++ {
		dst[i] = complex(f.bufRe[i], f.bufIm[i])
	}
}

// Inverse reconstructs a real frame from size/2+1 bins produced by
// Forward. dst must have length Size; src must have length Bins.
// Uses the conjugation identity: ifft(X) = conj(fft(conj(X))) / N.
func (f *FFT) Inverse(dst []float64, src []complex128) {
	n := f.size
	for i := 0; i < n; i++ {
		var re, im float64
		if i <= n/2 {
			re = real(src[i])
			im = imag(src[i])
		} else {
			// Conjugate symmetry of a real signal's spectrum.
			re = real(src[n-i])
			im = -imag(src[n-i])
		}
		j := f.perm[i]
		f.bufRe[j] = re
		f.bufIm[j] = -im
	}
	f.transform()
	scale := 1 / float64(n)
	for i := 0; i < n; i++ {
		dst[i] = f.bufRe[i] * scale
	}
}
