package dsp

import (
	"math"
	"testing"
)

func TestGlottalRosenbergPulseShape(t *testing.T) {
	g := NewGlottalSource()
	g.SetSampleRate(44100)
	g.SetFrequency(441) // exactly 100 samples per period
	g.SetPulseShape(0.5, 0.5, 0.1)

	out := make([]float64, 100)
	g.ProcessBlock(out)

	// Flow is non-negative and peaks during the open phase.
	var peak float64
	peakIdx := 0
	for i, v := range out {
		if v < -1e-12 || v > 1+1e-12 {
			t.Fatalf("sample %d: %f outside [0, 1]", i, v)
		}
		if v > peak {
			peak = v
			peakIdx = i
		}
	}
	if math.Abs(peak-1) > 1e-6 {
		t.Errorf("peak = %f, want 1", peak)
	}
	// Open quotient 0.5: the sinusoidal rise peaks at the end of the
	// open phase.
	if peakIdx < 40 || peakIdx > 60 {
		t.Errorf("peak at sample %d, want near 50", peakIdx)
	}
	// Closed phase is silent.
	if out[95] != 0 {
		t.Errorf("closed phase sample = %f, want 0", out[95])
	}
}

func TestGlottalPeriodicity(t *testing.T) {
	g := NewGlottalSource()
	g.SetSampleRate(44100)
	g.SetFrequency(441)

	out := make([]float64, 300)
	g.ProcessBlock(out)
	for i := 0; i < 100; i++ {
		if math.Abs(out[i]-out[i+100]) > 1e-6 {
			t.Fatalf("sample %d: %f vs next period %f", i, out[i], out[i+100])
		}
	}
}

func TestGlottalModelsBounded(t *testing.T) {
	for _, model := range []GlottalModel{Rosenberg, LF, Differentiated} {
		g := NewGlottalSource()
		g.SetModel(model)
		g.SetFrequency(110)
		out := make([]float64, 44100)
		g.ProcessBlock(out)
		for i, v := range out {
			if math.IsNaN(v) || math.Abs(v) > 2 {
				t.Fatalf("model %d sample %d: %f", model, i, v)
			}
		}
	}
}

func TestGlottalFrequencyClamp(t *testing.T) {
	g := NewGlottalSource()
	g.SetSampleRate(44100)

	// Below range clamps to 20 Hz: 2205 samples per period.
	g.SetFrequency(1)
	out := make([]float64, 4410)
	g.ProcessBlock(out)
	if math.Abs(out[0]-out[2205]) > 1e-6 {
		t.Errorf("low clamp: out[0]=%f out[2205]=%f, want one 20 Hz period apart", out[0], out[2205])
	}

	// Above range clamps to 1000 Hz.
	g.Reset()
	g.SetFrequency(50000)
	var changes int
	prev := g.Process()
	for i := 0; i < 441; i++ {
		v := g.Process()
		if v != prev {
			changes++
		}
		prev = v
	}
	if changes == 0 {
		t.Error("high clamp: output constant, want a running 1 kHz pulse")
	}
}

func TestGlottalShapeClamp(t *testing.T) {
	g := NewGlottalSource()
	g.SetPulseShape(5, -1, 3)
	out := make([]float64, 1000)
	g.ProcessBlock(out)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d non-finite after extreme shape params", i)
		}
	}
}

func TestGlottalReset(t *testing.T) {
	g := NewGlottalSource()
	g.SetFrequency(441)
	first := make([]float64, 50)
	g.ProcessBlock(first)
	g.Reset()
	again := make([]float64, 50)
	g.ProcessBlock(again)
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("sample %d: %f after reset, want %f", i, again[i], first[i])
		}
	}
}
