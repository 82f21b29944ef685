package dsp

import (
	"math"
	"testing"
)

func TestSubharmonicDryWhenMixZero(t *testing.T) {
	tr := NewSubharmonicTracker(44100)
	tr.SetMix(0)
	src := make([]float64, 512)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 220 * float64(i) / 44100)
	}
	dst := make([]float64, len(src))
	tr.Process(dst, src)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("sample %d: %f, want dry %f", i, dst[i], src[i])
		}
	}
}

func TestSubharmonicOpenLoopFrequency(t *testing.T) {
	tr := NewSubharmonicTracker(44100)
	tr.SetFrequency(220)
	tr.Reset()

	src := make([]float64, 4096)
	dst := make([]float64, len(src))
	tr.Process(dst, src)

	// PLL disabled: the tracked frequency stays pinned to the nominal.
	if got := tr.TrackedFrequency(); math.Abs(got-220) > 1e-6 {
		t.Errorf("TrackedFrequency() = %f, want 220", got)
	}
}

func TestSubharmonicSeedsFromNominal(t *testing.T) {
	// Without an explicit Reset, the smoothed frequency must start on
	// the nominal set by SetFrequency, not decay in from the
	// construction default.
	tr := NewSubharmonicTracker(44100)
	tr.SetFrequency(110)

	dst := make([]float64, 1)
	tr.Process(dst, []float64{0})
	if got := tr.TrackedFrequency(); math.Abs(got-110) > 1e-9 {
		t.Errorf("TrackedFrequency() after first sample = %f, want 110", got)
	}
}

func TestSubharmonicProducesSubOctave(t *testing.T) {
	const sr = 44100.0
	const freq = 220.0
	tr := NewSubharmonicTracker(sr)
	tr.SetFrequency(freq)
	tr.SetMix(1)
	tr.Reset()

	n := int(sr)
	src := make([]float64, n)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}
	dst := make([]float64, n)
	tr.Process(dst, src)

	// Goertzel energy at the half and quarter subharmonics, measured
	// over the settled second half.
	tail := dst[n/2:]
	half := goertzelMag(tail, freq/2, sr)
	quarter := goertzelMag(tail, freq/4, sr)
	fundamental := goertzelMag(tail, freq, sr)

	if half < quarter {
		t.Errorf("f/2 magnitude %f < f/4 magnitude %f, want dominant half subharmonic", half, quarter)
	}
	if quarter < fundamental {
		t.Errorf("f/4 magnitude %f < fundamental leakage %f", quarter, fundamental)
	}
}

func TestSubharmonicPLLBoundedTracking(t *testing.T) {
	const sr = 44100.0
	const freq = 220.0
	tr := NewSubharmonicTracker(sr)
	tr.SetFrequency(freq)
	tr.EnablePLL(true)
	tr.Reset()

	n := int(sr * 2)
	src := make([]float64, n)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}
	dst := make([]float64, n)
	tr.Process(dst, src)

	got := tr.TrackedFrequency()
	if got < 20 || got > 1000 {
		t.Errorf("TrackedFrequency() = %f, escaped the clamp range", got)
	}
	if math.Abs(tr.PhaseError()) > math.Pi {
		t.Errorf("PhaseError() = %f, not wrapped to [-pi, pi]", tr.PhaseError())
	}
	for i, v := range dst {
		if math.IsNaN(v) || math.Abs(v) > 2 {
			t.Fatalf("sample %d: %f, closed loop diverged", i, v)
		}
	}
}

func TestSubharmonicPLLSurvivesChirp(t *testing.T) {
	const sr = 44100.0
	tr := NewSubharmonicTracker(sr)
	tr.SetFrequency(220)
	tr.EnablePLL(true)
	tr.Reset()

	// Sweep 180 -> 260 Hz over two seconds. The loop must stay inside
	// the trackable range and the detector error must not diverge.
	n := int(sr * 2)
	src := make([]float64, n)
	phase := 0.0
	for i := range src {
		f := 180 + 80*float64(i)/float64(n)
		phase += 2 * math.Pi * f / sr
		src[i] = math.Sin(phase)
	}
	dst := make([]float64, n)

	var early, late float64
	quarter := n / 4
	for i := 0; i < n; i++ {
		tr.Process(dst[i:i+1], src[i:i+1])
		e := math.Abs(tr.PhaseError())
		if i < quarter {
			early += e
		} else if i >= 3*quarter {
			late += e
		}
		if f := tr.TrackedFrequency(); f < 20 || f > 1000 {
			t.Fatalf("sample %d: tracked frequency %f escaped clamp range", i, f)
		}
	}
	early /= float64(quarter)
	late /= float64(n - 3*quarter)
	if late > early*1.5+0.1 {
		t.Errorf("mean |phase error| grew from %f to %f over the sweep", early, late)
	}
}

func TestSubharmonicBassEnhancementChangesOutput(t *testing.T) {
	const sr = 44100.0
	mk := func(bass float64) []float64 {
		tr := NewSubharmonicTracker(sr)
		tr.SetFrequency(110)
		tr.SetMix(1)
		tr.SetBassEnhancement(bass)
		tr.Reset()
		src := make([]float64, 2048)
		dst := make([]float64, 2048)
		tr.Process(dst, src)
		return dst
	}
	plain := mk(0)
	enhanced := mk(1)
	same := true
	for i := range plain {
		if plain[i] != enhanced[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("bass enhancement had no effect on the wet signal")
	}
}

func TestSubharmonicReset(t *testing.T) {
	tr := NewSubharmonicTracker(44100)
	tr.SetFrequency(110)
	tr.SetMix(1)
	src := make([]float64, 1024)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 110 * float64(i) / 44100)
	}
	first := make([]float64, len(src))
	tr.Process(first, src)

	tr.Reset()
	again := make([]float64, len(src))
	tr.Process(again, src)
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("sample %d: %f after reset, want %f", i, again[i], first[i])
		}
	}
}

// goertzelMag returns the normalized magnitude of a single frequency
// bin over buf.
func goertzelMag(buf []float64, freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	coeff := 2 * math.Cos(w)
	var s0, s1, s2 float64
	for _, x := range buf {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	return math.Sqrt(math.Max(power, 0)) / float64(len(buf))
}
