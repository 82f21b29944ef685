package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

func TestClassifyDiphone(t *testing.T) {
	aa := vowelAA()
	k := consonantK()
	drone := phoneme.New("DRONE")
	drone.Category = phoneme.Drone
	pulsed := phoneme.New("PULSE")
	pulsed.Category = phoneme.Pulsed

	tests := []struct {
		name     string
		from, to *phoneme.Phoneme
		want     DiphoneKind
	}{
		{"vowel to vowel", aa, aa, DiphoneVV},
		{"vowel to consonant", aa, k, DiphoneVC},
		{"consonant to vowel", k, aa, DiphoneCV},
		{"consonant to consonant", k, k, DiphoneCC},
		{"pulsed behaves as vowel", pulsed, k, DiphoneVC},
		{"drone behaves as vowel", k, drone, DiphoneCV},
		{"nil endpoints are vowels", nil, nil, DiphoneVV},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, classifyDiphone(tt.from, tt.to), tt.name)
	}
}

func TestAlignedProgressCVHoldsConsonant(t *testing.T) {
	// The consonant holds for the first 30% of a CV window, so at
	// t = 0.3 the interpolated formants still sit exactly on the
	// consonant target. Linear interpolation would already be 30% of
	// the way to the vowel.
	require.Zero(t, alignedProgress(DiphoneCV, 0))
	require.Zero(t, alignedProgress(DiphoneCV, 0.15))
	require.Zero(t, alignedProgress(DiphoneCV, 0.3))
	require.InDelta(t, 0.5, alignedProgress(DiphoneCV, 0.65), 1e-12)
	require.InDelta(t, 1.0, alignedProgress(DiphoneCV, 1), 1e-12)

	k := consonantK()
	aa := vowelAA()
	shaped := crossfadeShape(alignedProgress(DiphoneCV, 0.3), 1)
	aligned := k.Formants.Lerp(aa.Formants, shaped)
	linear := k.Formants.Lerp(aa.Formants, 0.3)

	consonantF1 := k.Formants.Frequencies[0]
	require.Equal(t, consonantF1, aligned.Frequencies[0])
	require.Less(t,
		math.Abs(aligned.Frequencies[0]-consonantF1),
		math.Abs(linear.Frequencies[0]-consonantF1))
}

func TestAlignedProgressVCReachesConsonantEarly(t *testing.T) {
	require.Zero(t, alignedProgress(DiphoneVC, 0))
	require.InDelta(t, 0.5, alignedProgress(DiphoneVC, 0.35), 1e-12)
	require.Equal(t, 1.0, alignedProgress(DiphoneVC, 0.7))
	require.Equal(t, 1.0, alignedProgress(DiphoneVC, 0.9))
}

func TestAlignedProgressLinearKindsAndClamp(t *testing.T) {
	require.Equal(t, 0.25, alignedProgress(DiphoneVV, 0.25))
	require.Equal(t, 0.25, alignedProgress(DiphoneCC, 0.25))
	require.Zero(t, alignedProgress(DiphoneVV, -1))
	require.Equal(t, 1.0, alignedProgress(DiphoneVV, 2))
}

func TestCrossfadeShape(t *testing.T) {
	require.Equal(t, 0.5, crossfadeShape(0.5, 1))
	require.Equal(t, 0.25, crossfadeShape(0.5, 2))
	require.Greater(t, crossfadeShape(0.5, 0.5), 0.5)

	// Exponent clamps to [0.1, 3].
	require.InDelta(t, math.Pow(0.5, 0.1), crossfadeShape(0.5, 0.001), 1e-12)
	require.InDelta(t, math.Pow(0.5, 3), crossfadeShape(0.5, 100), 1e-12)
}

func TestDiphoneMethodTransitionMovesFormants(t *testing.T) {
	m := NewDiphoneMethod()
	require.NoError(t, m.Prepare(testParams()))
	m.SetTransitionDuration(0.2)

	aa := vowelAA()
	ee := phoneme.New("IY")
	ee.IPA = "i"
	ee.Category = phoneme.Vowel
	ee.Formants.Frequencies = [4]float64{270, 2300, 3000, 3500}
	ee.Formants.Bandwidths = [4]float64{60, 90, 120, 130}

	// Render past the end of the window. 1080 Hz and 2340 Hz are the
	// 6th and 13th harmonics of the 180 Hz fundamental, sitting on the
	// source and target second formants respectively.
	got := renderBlocks(t, m, 180, 0.8, aa, ee, 40, 512)
	early := got[:2205]
	late := got[len(got)-4410:]

	earlyLow := goertzelMag(early, 1080, 44100)
	earlyHigh := goertzelMag(early, 2340, 44100)
	lateLow := goertzelMag(late, 1080, 44100)
	lateHigh := goertzelMag(late, 2340, 44100)
	require.Greater(t, earlyLow, earlyHigh, "window start should sit on the source F2")
	require.Greater(t, lateHigh, lateLow, "window end should sit on the target F2")
}

func TestDiphoneMethodSteadyStateWithoutNext(t *testing.T) {
	m := NewDiphoneMethod()
	require.NoError(t, m.Prepare(testParams()))

	got := renderBlocks(t, m, 180, 0.8, vowelAA(), nil, 20, 512)
	require.Greater(t, rms(got), 0.0001)
	for i, v := range got {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "sample %d", i)
	}
}

func TestDiphoneMethodPairChangeRestartsWindow(t *testing.T) {
	m := NewDiphoneMethod()
	require.NoError(t, m.Prepare(testParams()))
	m.SetTransitionDuration(0.05)

	aa := vowelAA()
	k := consonantK()
	out := make([]float64, 512)

	// Finish an AA->K window.
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Process(180, 0.8, aa, k, out))
	}
	require.Equal(t, 1.0, m.position)

	// A new pair resets the window position.
	require.NoError(t, m.Process(180, 0.8, k, aa, out))
	require.Less(t, m.position, 1.0)
	require.Equal(t, DiphoneCV, m.kind)
}

func TestDiphoneMethodResetRestoresDeterminism(t *testing.T) {
	m := NewDiphoneMethod()
	require.NoError(t, m.Prepare(testParams()))

	aa := vowelAA()
	k := consonantK()
	first := renderBlocks(t, m, 180, 0.8, k, aa, 8, 512)
	m.Reset()
	second := renderBlocks(t, m, 180, 0.8, k, aa, 8, 512)
	require.Equal(t, first, second)
}
