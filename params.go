package choral

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
)

// paramSpec documents one parameter's legal range and default.
type paramSpec struct {
	min, max, def float64
}

// paramSpecs is the full flat parameter surface. Writes clamp to the
// documented range; the serialized form is one flat name:value object.
var paramSpecs = map[string]paramSpec{
	"masterVolume": {0, 1, 0.8},
	"polyphony":    {1, 128, 32},

	"vowelX": {-1, 1, 0},
	"vowelY": {-1, 1, 0},
	"vowelZ": {-1, 1, 0},

	"formantScale": {0.5, 2, 1},
	"formantShift": {-12, 12, 0},

	"breathMix":   {0, 1, 0},
	"breathColor": {0, 1, 0.5},

	"vibratoRate":  {0, 15, 5},
	"vibratoDepth": {0, 1, 0.1},
	"vibratoDelay": {0, 2, 0.5},

	"tightness":    {0, 1, 0.5},
	"ensembleSize": {1, 100, 32},
	"voiceSpread":  {0, 1, 0.3},

	"attack":  {0.001, 2, 0.05},
	"decay":   {0.001, 2, 0.2},
	"sustain": {0, 1, 0.7},
	"release": {0.01, 5, 0.3},

	"sopranoLevel": {0, 1, 0.8},
	"altoLevel":    {0, 1, 0.8},
	"tenorLevel":   {0, 1, 0.8},
	"bassLevel":    {0, 1, 0.8},

	"reverbMix":      {0, 1, 0.3},
	"reverbDecay":    {0.1, 10, 2.5},
	"reverbPredelay": {0, 0.1, 0.02},

	"spectralEnhancement": {0, 1, 0.5},
	"harmonicFocus":       {0, 1, 0.5},

	"subharmonicMix":   {0, 1, 0},
	"subharmonicDepth": {0, 1, 0.5},
	"subharmonicRatio": {1, 8, 2},

	"coarticulationAmount": {0, 1, 0.5},
	"transitionSpeed":      {0, 1, 0.5},

	"stereoWidth": {0, 1, 0.5},
}

// Parameters is the flat named-float control surface shared by the
// synthesizer and the host-facing layers. The zero value is not
// usable; construct with NewParameters.
type Parameters struct {
	values map[string]float64
}

// NewParameters returns the surface with every parameter at its
// default.
func NewParameters() *Parameters {
	p := &Parameters{values: make(map[string]float64, len(paramSpecs))}
	for name, spec := range paramSpecs {
		p.values[name] = spec.def
	}
	return p
}

// Set writes a parameter, clamping to its documented range. Unknown
// names are an error.
func (p *Parameters) Set(name string, v float64) error {
	spec, ok := paramSpecs[name]
	if !ok {
		return fmt.Errorf("choral: unknown parameter %q", name)
	}
	p.values[name] = mathutil.Clamp(v, spec.min, spec.max)
	return nil
}

// Get reads a parameter. Unknown names return the second value false.
func (p *Parameters) Get(name string) (float64, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Names returns every parameter name in sorted order.
func (p *Parameters) Names() []string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON serializes the surface as one flat name:value object.
func (p *Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.values)
}

// UnmarshalJSON loads a flat name:value object. Known names clamp to
// their ranges; unknown names are ignored so presets written by newer
// builds still load.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("choral: parameters: %w", err)
	}
	if p.values == nil {
		p.values = make(map[string]float64, len(paramSpecs))
		for name, spec := range paramSpecs {
			p.values[name] = spec.def
		}
	}
	for name, v := range raw {
		if spec, ok := paramSpecs[name]; ok {
			p.values[name] = mathutil.Clamp(v, spec.min, spec.max)
		}
	}
	return nil
}
