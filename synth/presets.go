package synth

import (
	"fmt"
	"sort"
)

// Preset bundles the fixed parameters of one overtone-singing or
// deep-drone style for the subharmonic method.
type Preset struct {
	Name        string
	Description string

	FundamentalFreq float64
	Ratio           float64 // subharmonic ratio, fundamental/ratio is the sub pitch
	SubAmplitude    float64 // sub layer share of the blend

	MelodyFormantFreq      float64
	MelodyFormantBandwidth float64
	MelodyFormantAmplitude float64

	PulseRate  float64 // rhythmic amplitude modulation, Hz (0 = off)
	PulseDepth float64

	VentricularFolds  bool
	ChestVoice        bool
	FormantModulation bool
	SharpResonance    bool
}

// presets is the immutable style table. Lookup copies the value, so
// callers cannot mutate the table through a preset.
var presets = map[string]Preset{
	"tibetan_sygyt": {
		Name:                   "tibetan_sygyt",
		Description:            "high whistle-like melody over drone",
		FundamentalFreq:        110,
		Ratio:                  2,
		SubAmplitude:           0.4,
		MelodyFormantFreq:      1800,
		MelodyFormantBandwidth: 80,
		MelodyFormantAmplitude: 0.85,
		SharpResonance:         true,
	},
	"tuva_kargyraa": {
		Name:                   "tuva_kargyraa",
		Description:            "deep sub-bass with 3:1 subharmonic",
		FundamentalFreq:        110,
		Ratio:                  3,
		SubAmplitude:           0.7,
		MelodyFormantFreq:      600,
		MelodyFormantBandwidth: 150,
		MelodyFormantAmplitude: 0.5,
		VentricularFolds:       true,
		ChestVoice:             true,
	},
	"inuit_katajjaq": {
		Name:                   "inuit_katajjaq",
		Description:            "rhythmic breathing patterns",
		FundamentalFreq:        147,
		Ratio:                  2,
		SubAmplitude:           0.5,
		MelodyFormantFreq:      1200,
		MelodyFormantBandwidth: 120,
		MelodyFormantAmplitude: 0.6,
		PulseRate:              6,
		PulseDepth:             0.5,
		FormantModulation:      true,
	},
	"sardinian_cantu_a_tenore": {
		Name:                   "sardinian_cantu_a_tenore",
		Description:            "four-voice polyphony",
		FundamentalFreq:        98,
		Ratio:                  2,
		SubAmplitude:           0.3,
		MelodyFormantFreq:      1000,
		MelodyFormantBandwidth: 100,
		MelodyFormantAmplitude: 0.7,
	},
	"subhuman_deep": {
		Name:                   "subhuman_deep",
		Description:            "extreme sub-bass with 4:1 subharmonic",
		FundamentalFreq:        82,
		Ratio:                  4,
		SubAmplitude:           0.8,
		MelodyFormantFreq:      400,
		MelodyFormantBandwidth: 200,
		MelodyFormantAmplitude: 0.4,
		VentricularFolds:       true,
		ChestVoice:             true,
	},
	"basso_profondo": {
		Name:                   "basso_profondo",
		Description:            "extreme bass drone",
		FundamentalFreq:        65,
		Ratio:                  2,
		SubAmplitude:           0.6,
		MelodyFormantFreq:      500,
		MelodyFormantBandwidth: 150,
		MelodyFormantAmplitude: 0.5,
		ChestVoice:             true,
	},
}

// LookupPreset returns the named style.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("synth: unknown preset %q", name)
	}
	return p, nil
}

// PresetNames returns the available style names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
