// Package phoneme holds the phoneme inventory for a loaded language:
// typed records with formant, articulatory, temporal, and subharmonic
// data, and a database that owns them and serves read-only lookups to
// the G2P and synthesis layers.
package phoneme

import "log/slog"

// Category classifies a phoneme for synthesis-method selection and
// diphone transition typing.
type Category int

const (
	Vowel Category = iota
	Consonant
	Drone
	Formant
	Subharmonic
	Pulsed
)

var categoryNames = map[Category]string{
	Vowel:       "vowel",
	Consonant:   "consonant",
	Drone:       "drone",
	Formant:     "formant",
	Subharmonic: "subharmonic",
	Pulsed:      "pulsed",
}

// String returns the lowercase category name used in language files.
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "vowel"
}

// ParseCategory maps a language-file category string to a Category.
// Unknown strings default to Vowel with a logged warning so a typo in
// one entry does not abort a whole language load.
func ParseCategory(s string) Category {
	for c, name := range categoryNames {
		if s == name {
			return c
		}
	}
	slog.Warn("unknown phoneme category, defaulting to vowel", "category", s)
	return Vowel
}

// Formants is the four-formant model: frequencies F1-F4 and their
// bandwidths in Hz.
type Formants struct {
	Frequencies [4]float64
	Bandwidths  [4]float64
}

// DefaultFormants returns the neutral vocal-tract configuration used
// when a language entry omits formant data.
func DefaultFormants() Formants {
	return Formants{
		Frequencies: [4]float64{500, 1500, 2500, 3500},
		Bandwidths:  [4]float64{50, 80, 120, 150},
	}
}

// Frequency returns the frequency of formant index 0-3, or 0 when out
// of range.
func (f Formants) Frequency(i int) float64 {
	if i < 0 || i >= len(f.Frequencies) {
		return 0
	}
	return f.Frequencies[i]
}

// Bandwidth returns the bandwidth of formant index 0-3, or 0 when out
// of range.
func (f Formants) Bandwidth(i int) float64 {
	if i < 0 || i >= len(f.Bandwidths) {
		return 0
	}
	return f.Bandwidths[i]
}

// Lerp interpolates linearly between two formant sets. t is clamped to
// [0, 1].
func (f Formants) Lerp(to Formants, t float64) Formants {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	var out Formants
	for i := 0; i < 4; i++ {
		out.Frequencies[i] = f.Frequencies[i] + (to.Frequencies[i]-f.Frequencies[i])*t
		out.Bandwidths[i] = f.Bandwidths[i] + (to.Bandwidths[i]-f.Bandwidths[i])*t
	}
	return out
}

// Articulatory describes the physical articulation properties that
// affect excitation and timbre.
type Articulatory struct {
	Nasal   bool
	Rounded bool
	Voiced  bool
	Lateral bool
	Rhotic  bool
}

// DefaultArticulatory returns the default feature set: voiced, nothing
// else.
func DefaultArticulatory() Articulatory {
	return Articulatory{Voiced: true}
}

// Temporal bounds a phoneme's duration in milliseconds.
type Temporal struct {
	MinDurationMs     int
	MaxDurationMs     int
	DefaultDurationMs int
}

// DefaultTemporal returns the 50/500/200 ms defaults.
func DefaultTemporal() Temporal {
	return Temporal{MinDurationMs: 50, MaxDurationMs: 500, DefaultDurationMs: 200}
}

// SubharmonicParams carries the extra data used by the subharmonic
// synthesis method for drone and chest-voice phonemes.
type SubharmonicParams struct {
	FundamentalFreq float64
	Ratio           float64
	Amplitude       float64

	FormantCenterFreq float64
	FormantBandwidth  float64
	FormantAmplitude  float64

	PulseRate  float64
	PulseDepth float64

	VentricularFolds  bool
	ChestVoice        bool
	FormantModulation bool
	SharpResonance    bool
}

// DefaultSubharmonicParams returns the 110 Hz / ratio 2 / amplitude 0.5
// defaults.
func DefaultSubharmonicParams() SubharmonicParams {
	return SubharmonicParams{FundamentalFreq: 110, Ratio: 2, Amplitude: 0.5}
}

// Phoneme is a single speech sound or vocal-technique element.
// Records are immutable once loaded into a Database; callers hold
// references, the database owns the storage.
type Phoneme struct {
	Symbol       string // unique ID within a language, e.g. "AA"
	IPA          string // IPA symbol, e.g. "ɑ"
	Category     Category
	Formants     Formants
	Articulatory Articulatory
	Temporal     Temporal
	Subharmonic  SubharmonicParams
}

// New returns a phoneme with all defaults applied.
func New(symbol string) *Phoneme {
	return &Phoneme{
		Symbol:       symbol,
		Category:     Vowel,
		Formants:     DefaultFormants(),
		Articulatory: DefaultArticulatory(),
		Temporal:     DefaultTemporal(),
		Subharmonic:  DefaultSubharmonicParams(),
	}
}

// IsVoiced reports whether the phoneme carries voicing.
func (p *Phoneme) IsVoiced() bool {
	return p.Articulatory.Voiced
}
