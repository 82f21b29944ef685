package synth

import (
	"math"

	"github.com/bretbouchard/choral-v2-sub002/dsp"
	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

// DiphoneKind classifies a phoneme transition by endpoint category.
type DiphoneKind int

const (
	DiphoneVV DiphoneKind = iota
	DiphoneVC
	DiphoneCV
	DiphoneCC
)

// classifyDiphone types a transition. Only the consonant category
// counts as a consonant; drones and the other vocal categories behave
// like vowels.
func classifyDiphone(from, to *phoneme.Phoneme) DiphoneKind {
	fromVowel := from == nil || from.Category != phoneme.Consonant
	toVowel := to == nil || to.Category != phoneme.Consonant
	switch {
	case fromVowel && toVowel:
		return DiphoneVV
	case fromVowel && !toVowel:
		return DiphoneVC
	case !fromVowel && toVowel:
		return DiphoneCV
	default:
		return DiphoneCC
	}
}

// alignedProgress maps window fraction t to interpolation progress.
// A CV transition holds the consonant for the first 30% of the window
// so the stop/onset stays articulated before gliding into the vowel;
// VC mirrors this by reaching the consonant at 70%. VV and CC progress
// linearly.
func alignedProgress(kind DiphoneKind, t float64) float64 {
	t = mathutil.Clamp(t, 0, 1)
	switch kind {
	case DiphoneCV:
		if t < 0.3 {
			return 0
		}
		return (t - 0.3) / 0.7
	case DiphoneVC:
		if t > 0.7 {
			return 1
		}
		return t / 0.7
	default:
		return t
	}
}

// crossfadeShape applies the power-curve bias: curve 1 is linear,
// below 1 rushes toward the target, above 1 lingers at the source.
func crossfadeShape(progress, curve float64) float64 {
	curve = mathutil.Clamp(curve, 0.1, 3)
	return math.Pow(progress, curve)
}

// DiphoneMethod renders phoneme transitions: formant frequencies and
// bandwidths interpolate from the current phoneme's data to the next
// one's under category-dependent alignment and a power crossfade, with
// excitation evaluating both endpoints across the window.
type DiphoneMethod struct {
	params   Params
	prepared bool

	resonators [4]dsp.FormantResonator
	smoothers  [4]*dsp.LinearSmoother
	bands      [4]float64

	exc excitation

	transitionDur float64 // seconds
	curve         float64

	kind     DiphoneKind
	position float64 // window fraction, 0-1
	pairKey  string
}

// NewDiphoneMethod returns an unprepared diphone voice.
func NewDiphoneMethod() *DiphoneMethod {
	return &DiphoneMethod{
		transitionDur: 0.15,
		curve:         1,
	}
}

func (m *DiphoneMethod) Name() string { return "diphone" }

// Prepare binds the voice to a sample rate.
func (m *DiphoneMethod) Prepare(p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	m.params = p
	m.exc = newExcitation(p.SampleRate)

	neutral := phoneme.DefaultFormants()
	for i := range m.smoothers {
		m.smoothers[i] = dsp.NewLinearSmoother(0.005, p.SampleRate)
		m.smoothers[i].SetTargetImmediate(neutral.Frequencies[i])
		m.bands[i] = neutral.Bandwidths[i]
		m.resonators[i].SetParameters(neutral.Frequencies[i], neutral.Bandwidths[i], p.SampleRate)
		m.resonators[i].Reset()
	}
	m.position = 0
	m.pairKey = ""
	m.prepared = true
	return nil
}

// SetTransitionDuration sets the diphone window length in seconds,
// clamped to 10 ms - 1 s.
func (m *DiphoneMethod) SetTransitionDuration(seconds float64) {
	m.transitionDur = mathutil.Clamp(seconds, 0.01, 1)
}

// SetCrossfadeCurve sets the power-curve exponent, clamped to 0.1-3.
func (m *DiphoneMethod) SetCrossfadeCurve(curve float64) {
	m.curve = mathutil.Clamp(curve, 0.1, 3)
}

// Process renders one block. With next non-nil the voice is inside a
// transition window and interpolates toward it; with next nil the
// current phoneme holds steady.
func (m *DiphoneMethod) Process(freq, amp float64, cur, next *phoneme.Phoneme, out []float64) error {
	if !m.prepared {
		return errNotPrepared
	}

	key := symbolOf(cur) + "\x00" + symbolOf(next)
	if key != m.pairKey {
		m.pairKey = key
		m.position = 0
		m.kind = classifyDiphone(cur, next)
		// A plosive endpoint bursts once, at the window start.
		if excitationFor(cur) == exciteBurst || (next != nil && excitationFor(next) == exciteBurst) {
			m.exc.startBurst()
		}
	}

	from := formantsOfRecord(cur)
	to := from
	if next != nil {
		to = formantsOfRecord(next)
	}

	posInc := 1 / (m.transitionDur * m.params.SampleRate)
	curKind := excitationFor(cur)
	nextKind := curKind
	if next != nil {
		nextKind = excitationFor(next)
	}

	for i := range out {
		shaped := crossfadeShape(alignedProgress(m.kind, m.position), m.curve)
		if next != nil && m.position < 1 {
			m.position += posInc
			if m.position > 1 {
				m.position = 1
			}
		}

		// Excitation follows the dominant endpoint of the window.
		kind := curKind
		if shaped >= 0.5 {
			kind = nextKind
		}
		sample := m.exc.next(kind, freq)

		target := from.Lerp(to, shaped)
		for k := 0; k < 4; k++ {
			m.smoothers[k].SetTarget(target.Frequencies[k])
			m.bands[k] = target.Bandwidths[k]
			m.resonators[k].SetParameters(m.smoothers[k].Next(), m.bands[k], m.params.SampleRate)
			sample = m.resonators[k].Process(sample)
		}
		out[i] = sample * amp
	}
	return nil
}

// formantsOfRecord reads the four-formant data off a phoneme record,
// defaulting to the neutral tract.
func formantsOfRecord(p *phoneme.Phoneme) phoneme.Formants {
	if p == nil {
		return phoneme.DefaultFormants()
	}
	return p.Formants
}

// Reset restores the prepared state: neutral tract, window rewound.
func (m *DiphoneMethod) Reset() {
	if !m.prepared {
		return
	}
	neutral := phoneme.DefaultFormants()
	for i := range m.resonators {
		m.resonators[i].Reset()
		if m.smoothers[i] != nil {
			m.smoothers[i].SetTargetImmediate(neutral.Frequencies[i])
		}
		m.bands[i] = neutral.Bandwidths[i]
		m.resonators[i].SetParameters(neutral.Frequencies[i], neutral.Bandwidths[i], m.params.SampleRate)
	}
	m.exc.reset()
	m.position = 0
	m.pairKey = ""
}
