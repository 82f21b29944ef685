package synth

import (
	"math"

	"github.com/bretbouchard/choral-v2-sub002/dsp"
	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

// SubharmonicMethod layers a glottal fundamental with a phase-locked
// sub-octave voice. The sub layer alone runs through formant
// resonators for timbral coloring; the two layers blend by the
// phoneme's or preset's subharmonic amplitude, soft-clip, and may pass
// through spectral enhancement.
type SubharmonicMethod struct {
	params   Params
	prepared bool

	glottal  *dsp.GlottalSource
	tracker  *dsp.SubharmonicTracker
	coloring [4]dsp.FormantResonator
	enhancer *dsp.SpectralEnhancer

	subBuf []float64

	ratio      float64
	subMix     float64 // preset override; <0 means follow the phoneme
	enhance    bool
	pulseRate  float64
	pulseDepth float64
	pulsePhase float64

	preset     *Preset
	lastSymbol string
}

// NewSubharmonicMethod returns an unprepared subharmonic voice.
func NewSubharmonicMethod() *SubharmonicMethod {
	return &SubharmonicMethod{
		ratio:  2,
		subMix: -1,
	}
}

func (m *SubharmonicMethod) Name() string { return "subharmonic" }

// Prepare allocates the per-block scratch buffer and builds the DSP
// chain at the given sample rate.
func (m *SubharmonicMethod) Prepare(p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	m.params = p

	m.glottal = dsp.NewGlottalSource()
	m.glottal.SetSampleRate(p.SampleRate)
	m.tracker = dsp.NewSubharmonicTracker(p.SampleRate)
	m.tracker.SetMix(1) // pure sub layer; blending happens here
	m.tracker.EnablePLL(true)

	enh, err := dsp.NewSpectralEnhancer(dsp.DefaultEnhancerSize)
	if err != nil {
		return err
	}
	m.enhancer = enh
	m.subBuf = make([]float64, p.MaxBlockSize)

	for i := range m.coloring {
		m.coloring[i].Reset()
	}
	m.prepared = true
	return nil
}

// SetRatio sets the subharmonic divisor (2 = octave down). Values are
// clamped to [1, 8].
func (m *SubharmonicMethod) SetRatio(ratio float64) {
	m.ratio = mathutil.Clamp(ratio, 1, 8)
}

// SetSubMix overrides the phoneme-specified sub-layer amplitude with a
// fixed fraction in [0, 1]. A negative value returns control to the
// phoneme data.
func (m *SubharmonicMethod) SetSubMix(mix float64) {
	if mix < 0 {
		m.subMix = -1
		return
	}
	m.subMix = mathutil.Clamp(mix, 0, 1)
}

// EnableEnhancement routes the blended output through the spectral
// enhancer.
func (m *SubharmonicMethod) EnableEnhancement(enable bool, amount, focus float64) {
	m.enhance = enable
	if m.enhancer != nil {
		m.enhancer.SetAmount(amount)
		m.enhancer.SetFocus(focus)
	}
}

// ApplyPreset installs a named overtone-singing style: subharmonic
// ratio and amplitude, melody formant coloring, and rhythmic pulsing.
func (m *SubharmonicMethod) ApplyPreset(name string) error {
	p, err := LookupPreset(name)
	if err != nil {
		return err
	}
	m.preset = &p
	m.ratio = p.Ratio
	m.subMix = p.SubAmplitude
	m.pulseRate = p.PulseRate
	m.pulseDepth = p.PulseDepth
	m.lastSymbol = "\x00" // force a coloring retune on the next block
	return nil
}

// ClearPreset returns to phoneme-driven parameters.
func (m *SubharmonicMethod) ClearPreset() {
	m.preset = nil
	m.subMix = -1
	m.pulseRate = 0
	m.pulseDepth = 0
	m.lastSymbol = "\x00"
}

// Process renders one block at the given fundamental.
func (m *SubharmonicMethod) Process(freq, amp float64, cur, next *phoneme.Phoneme, out []float64) error {
	if !m.prepared {
		return errNotPrepared
	}
	if len(out) > len(m.subBuf) {
		return errBlockTooLarge(len(out), len(m.subBuf))
	}

	ratio := m.ratio
	subMix := m.subMix
	if cur != nil {
		if m.preset == nil && cur.Subharmonic.Ratio > 0 {
			ratio = mathutil.Clamp(cur.Subharmonic.Ratio, 1, 8)
		}
		if subMix < 0 {
			subMix = mathutil.Clamp(cur.Subharmonic.Amplitude, 0, 1)
		}
	}
	if subMix < 0 {
		subMix = 0.5
	}

	if symbol := symbolOf(cur); symbol != m.lastSymbol {
		m.lastSymbol = symbol
		m.retuneColoring(cur)
	}

	// Fundamental layer.
	m.glottal.SetFrequency(freq)
	m.glottal.ProcessBlock(out)

	// Sub layer: the tracker locks to the glottal signal; its nominal
	// frequency is chosen so the locked/2 partial lands at freq/ratio.
	m.tracker.SetFrequency(freq * 2 / ratio)
	sub := m.subBuf[:len(out)]
	m.tracker.Process(sub, out)
	// Coloring blends at half strength: the narrow formants shape the
	// sub timbre without swallowing its fundamental.
	for i := range sub {
		s := sub[i]
		c := s
		for k := range m.coloring {
			c = m.coloring[k].Process(c)
		}
		sub[i] = 0.5*s + 0.5*c
	}

	pulseInc := 2 * math.Pi * m.pulseRate / m.params.SampleRate
	for i := range out {
		blend := out[i]*(1-subMix) + sub[i]*subMix
		if m.pulseRate > 0 {
			m.pulsePhase = mathutil.WrapPhase2Pi(m.pulsePhase + pulseInc)
			blend *= 1 - m.pulseDepth*0.5*(1-math.Cos(m.pulsePhase))
		}
		out[i] = math.Tanh(blend) * amp
	}

	if m.enhance {
		m.enhancer.Process(out)
	}
	return nil
}

// retuneColoring sets the sub-layer resonators from the preset's
// melody formant or the phoneme's formant data.
func (m *SubharmonicMethod) retuneColoring(cur *phoneme.Phoneme) {
	if m.preset != nil {
		bw := m.preset.MelodyFormantBandwidth
		if m.preset.SharpResonance {
			bw *= 0.5
		}
		m.coloring[0].SetParameters(m.preset.MelodyFormantFreq, bw, m.params.SampleRate)
		for k := 1; k < len(m.coloring); k++ {
			m.coloring[k].SetParameters(0, 0, m.params.SampleRate) // pass-through
		}
		return
	}
	f := phoneme.DefaultFormants()
	if cur != nil {
		f = cur.Formants
	}
	for k := range m.coloring {
		m.coloring[k].SetParameters(f.Frequencies[k], f.Bandwidths[k], m.params.SampleRate)
	}
}

func symbolOf(p *phoneme.Phoneme) string {
	if p == nil {
		return ""
	}
	return p.Symbol
}

// Reset restores the prepared state. The tracker is rebuilt so its
// smoothed frequency re-centers exactly as at preparation time.
func (m *SubharmonicMethod) Reset() {
	if !m.prepared {
		return
	}
	m.glottal.Reset()
	m.tracker = dsp.NewSubharmonicTracker(m.params.SampleRate)
	m.tracker.SetMix(1)
	m.tracker.EnablePLL(true)
	m.enhancer.Reset()
	for i := range m.coloring {
		m.coloring[i].Reset()
	}
	m.pulsePhase = 0
	m.lastSymbol = ""
}
