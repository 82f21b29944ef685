package synth

import (
	"math"

	"github.com/bretbouchard/choral-v2-sub002/dsp"
	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

// Vibrato is the LFO configuration shared by the voiced methods.
// Rate is in Hz, Depth in semitones.
type Vibrato struct {
	Enabled bool
	Rate    float64
	Depth   float64
}

func defaultVibrato() Vibrato {
	return Vibrato{Rate: 6, Depth: 0.3}
}

// FormantMethod renders a voice through five series formant
// resonators driven by phoneme-dependent excitation. Formant targets
// come from the vowel/consonant tables and are smoothed over a
// configurable transition time; vibrato modulates F1/F2.
type FormantMethod struct {
	params   Params
	prepared bool

	resonators [5]dsp.FormantResonator
	smoothers  [5]*dsp.LinearSmoother
	bands      [5]float64

	exc            excitation
	transitionTime float64
	vibrato        Vibrato
	vibratoPhase   float64
	lastSymbol     string
}

// NewFormantMethod returns an unprepared formant voice.
func NewFormantMethod() *FormantMethod {
	return &FormantMethod{
		transitionTime: 0.05,
		vibrato:        defaultVibrato(),
	}
}

func (m *FormantMethod) Name() string { return "formant" }

// Prepare binds the voice to a sample rate and sets every resonator
// and smoother to the neutral tract.
func (m *FormantMethod) Prepare(p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	m.params = p
	m.exc = newExcitation(p.SampleRate)

	for i := range m.smoothers {
		m.smoothers[i] = dsp.NewLinearSmoother(m.transitionTime, p.SampleRate)
		m.smoothers[i].SetTargetImmediate(schwaFormants.freqs[i])
		m.bands[i] = schwaFormants.bands[i]
		m.resonators[i].SetParameters(schwaFormants.freqs[i], schwaFormants.bands[i], p.SampleRate)
		m.resonators[i].Reset()
	}
	m.vibratoPhase = 0
	m.lastSymbol = ""
	m.prepared = true
	return nil
}

// SetTransitionTime sets the formant smoothing time in seconds.
func (m *FormantMethod) SetTransitionTime(seconds float64) {
	m.transitionTime = mathutil.Clamp(seconds, 0.001, 1)
	for _, s := range m.smoothers {
		if s != nil {
			s.SetTimeConstant(m.transitionTime, m.params.SampleRate)
		}
	}
}

// SetVibrato configures the F1/F2 vibrato LFO. Rate is clamped to the
// vocal 5-7 Hz band.
func (m *FormantMethod) SetVibrato(v Vibrato) {
	v.Rate = mathutil.Clamp(v.Rate, 5, 7)
	m.vibrato = v
}

// Process renders one block. cur selects excitation and formant
// targets; next is ignored by this method (transitions are handled by
// the smoothers).
func (m *FormantMethod) Process(freq, amp float64, cur, next *phoneme.Phoneme, out []float64) error {
	if !m.prepared {
		return errNotPrepared
	}

	kind := excitationFor(cur)
	symbol := ""
	if cur != nil {
		symbol = cur.Symbol
	}
	if symbol != m.lastSymbol {
		m.lastSymbol = symbol
		target := formantsFor(cur)
		for i, s := range m.smoothers {
			s.SetTarget(target.freqs[i])
			m.bands[i] = target.bands[i]
		}
		if kind == exciteBurst {
			m.exc.startBurst()
		}
	}

	for i := range out {
		sample := m.exc.next(kind, freq)

		f1 := m.smoothers[0].Next()
		f2 := m.smoothers[1].Next()
		if m.vibrato.Enabled {
			ratio := m.vibratoTick()
			f1 *= ratio
			f2 *= ratio
		}
		m.resonators[0].SetParameters(f1, m.bands[0], m.params.SampleRate)
		m.resonators[1].SetParameters(f2, m.bands[1], m.params.SampleRate)
		for k := 2; k < 5; k++ {
			m.resonators[k].SetParameters(m.smoothers[k].Next(), m.bands[k], m.params.SampleRate)
		}

		for k := 0; k < 5; k++ {
			sample = m.resonators[k].Process(sample)
		}
		out[i] = sample * amp
	}
	return nil
}

// vibratoTick advances the LFO and returns the pitch ratio applied to
// F1/F2: 2^(depth*sin/12) with depth in semitones.
func (m *FormantMethod) vibratoTick() float64 {
	m.vibratoPhase = mathutil.WrapPhase2Pi(
		m.vibratoPhase + 2*math.Pi*m.vibrato.Rate/m.params.SampleRate)
	return mathutil.SemitoneRatio(math.Sin(m.vibratoPhase) * m.vibrato.Depth)
}

// Reset restores the prepared state: neutral tract, cleared filters.
func (m *FormantMethod) Reset() {
	if !m.prepared {
		return
	}
	for i := range m.resonators {
		m.resonators[i].Reset()
		if m.smoothers[i] != nil {
			m.smoothers[i].SetTargetImmediate(schwaFormants.freqs[i])
		}
		m.bands[i] = schwaFormants.bands[i]
		m.resonators[i].SetParameters(schwaFormants.freqs[i], schwaFormants.bands[i], m.params.SampleRate)
	}
	m.exc.reset()
	m.vibratoPhase = 0
	m.lastSymbol = ""
}
