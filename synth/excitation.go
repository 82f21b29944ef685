package synth

import "github.com/bretbouchard/choral-v2-sub002/phoneme"

// excitationKind selects the raw source driving the resonator chain.
type excitationKind int

const (
	excitePulse excitationKind = iota // sawtooth at the fundamental
	exciteNoise                       // white noise, unvoiced sounds
	exciteMixed                       // pulse/noise blend, fricatives
	exciteBurst                       // short noise burst, plosives
)

// IPA sets driving excitation selection.
var (
	fricativeIPA = map[string]bool{
		"s": true, "ʃ": true, "f": true, "v": true, "z": true,
		"ʒ": true, "θ": true, "ð": true, "h": true, "x": true,
	}
	plosiveIPA = map[string]bool{
		"p": true, "t": true, "k": true, "b": true, "d": true, "g": true,
	}
)

// excitationFor classifies a phoneme. Plosives and fricatives are
// recognized by IPA symbol before the generic voiced/unvoiced split.
func excitationFor(p *phoneme.Phoneme) excitationKind {
	if p == nil {
		return excitePulse
	}
	switch {
	case plosiveIPA[p.IPA]:
		return exciteBurst
	case fricativeIPA[p.IPA]:
		return exciteMixed
	case !p.Articulatory.Voiced:
		return exciteNoise
	default:
		return excitePulse
	}
}

// noiseSource is a linear congruential generator with a fixed seed, so
// renders are reproducible.
type noiseSource struct {
	seed uint32
}

func newNoiseSource() noiseSource {
	return noiseSource{seed: 12345}
}

func (n *noiseSource) next() float64 {
	n.seed = n.seed*1103515245 + 12345
	return float64(n.seed&0x7FFF)/16384 - 1
}

// excitation produces the per-sample source signal for one voice.
type excitation struct {
	sampleRate float64
	noise      noiseSource
	phase      float64
	burstPos   int // samples since the current burst started

	pulseMix  float64 // pulse share of the mixed source
	noiseGain float64
}

func newExcitation(sampleRate float64) excitation {
	return excitation{
		sampleRate: sampleRate,
		noise:      newNoiseSource(),
		pulseMix:   0.5,
		noiseGain:  0.3,
	}
}

// startBurst rearms the plosive burst window. Called when a plosive
// phoneme (or a transition into one) begins.
func (e *excitation) startBurst() {
	e.burstPos = 0
}

func (e *excitation) reset() {
	e.phase = 0
	e.burstPos = 0
	e.noise = newNoiseSource()
}

// next returns one excitation sample of the given kind at the given
// fundamental.
func (e *excitation) next(kind excitationKind, freq float64) float64 {
	switch kind {
	case exciteNoise:
		return e.noise.next() * e.noiseGain
	case exciteMixed:
		pulse := e.saw(freq)
		noise := e.noise.next() * e.noiseGain
		return pulse*e.pulseMix + noise*(1-e.pulseMix)
	case exciteBurst:
		pos := e.burstPos
		e.burstPos++
		if float64(pos) < e.sampleRate*0.01 {
			return e.noise.next() * 2
		}
		return 0
	default:
		return e.saw(freq)
	}
}

// saw advances the sawtooth oscillator and returns a sample in [-1, 1].
func (e *excitation) saw(freq float64) float64 {
	e.phase += freq / e.sampleRate
	if e.phase > 1 {
		e.phase -= 1
	}
	return 2*e.phase - 1
}
