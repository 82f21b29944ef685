package mathutil

import "math"

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// WrapPhase wraps a phase angle to [-pi, pi].
func WrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p < -math.Pi {
		p += 2 * math.Pi
	}
	return p
}

// WrapPhase2Pi wraps a phase accumulator to [0, 2*pi).
func WrapPhase2Pi(p float64) float64 {
	for p >= 2*math.Pi {
		p -= 2 * math.Pi
	}
	for p < 0 {
		p += 2 * math.Pi
	}
	return p
}

// SemitoneRatio converts a pitch offset in semitones to a frequency ratio.
func SemitoneRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// DbToGain converts a decibel value to a linear amplitude gain.
func DbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NoteToFrequency converts a MIDI note number to frequency in Hz
// (equal temperament, A4 = 440 Hz at note 69).
func NoteToFrequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// Scale multiplies every element of buf by gain in place.
func Scale(buf []float64, gain float64) {
	for i := range buf {
		buf[i] *= gain
	}
}

// MixInto adds src scaled by gain into dst element-wise.
// The slices must have equal length.
func MixInto(dst, src []float64, gain float64) {
	for i := range dst {
		dst[i] += src[i] * gain
	}
}
