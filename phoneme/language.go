package phoneme

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// Language is the parsed content of a language definition file:
// phoneme inventory plus the G2P rules, dictionary, and synthesis
// defaults that travel with it.
type Language struct {
	Name       string
	Phonemes   []*Phoneme
	Rules      []LanguageRule
	Dictionary map[string][]string
	Synthesis  SynthesisDefaults
}

// LanguageRule is one grapheme-to-phoneme rule as written in a
// language file. The g2p package compiles these into its matcher.
type LanguageRule struct {
	Pattern   string   `yaml:"pattern"`
	Phonemes  []string `yaml:"phonemes"`
	Priority  int      `yaml:"priority"`
	WordStart bool     `yaml:"word_start"`
	WordEnd   bool     `yaml:"word_end"`
	Preceding string   `yaml:"preceding"`
	Following string   `yaml:"following"`
	Class     string   `yaml:"class"`
}

// SynthesisDefaults are per-language rendering defaults.
type SynthesisDefaults struct {
	SpeechRate    float64 `yaml:"speech_rate"`
	DefaultPitch  float64 `yaml:"default_pitch"`
	PauseDuration float64 `yaml:"pause_duration"`
}

type languageFile struct {
	Name      string               `yaml:"name"`
	Phonemes  map[string]yaml.Node `yaml:"phonemes"`
	Rules     []LanguageRule       `yaml:"rules"`
	Dict      map[string][]string  `yaml:"dictionary"`
	Synthesis SynthesisDefaults    `yaml:"synthesis"`
}

type formantsEntry struct {
	Frequencies []float64 `yaml:"frequencies"`
	Bandwidths  []float64 `yaml:"bandwidths"`
	F1          *float64  `yaml:"f1"`
	F2          *float64  `yaml:"f2"`
	F3          *float64  `yaml:"f3"`
	F4          *float64  `yaml:"f4"`
	BW1         *float64  `yaml:"bw1"`
	BW2         *float64  `yaml:"bw2"`
	BW3         *float64  `yaml:"bw3"`
	BW4         *float64  `yaml:"bw4"`
}

type articulatoryEntry struct {
	Nasal   *bool `yaml:"is_nasal"`
	Rounded *bool `yaml:"is_rounded"`
	Voiced  *bool `yaml:"is_voiced"`
	Lateral *bool `yaml:"is_lateral"`
	Rhotic  *bool `yaml:"is_rhotic"`
}

type temporalEntry struct {
	Min     *int `yaml:"min_duration"`
	Max     *int `yaml:"max_duration"`
	Default *int `yaml:"default_duration"`
}

type subharmonicEntry struct {
	FundamentalFreq   *float64 `yaml:"fundamental_freq"`
	Ratio             *float64 `yaml:"subharmonic_ratio"`
	Amplitude         *float64 `yaml:"subharmonic_amplitude"`
	FormantCenterFreq *float64 `yaml:"formant_center_freq"`
	FormantBandwidth  *float64 `yaml:"formant_bandwidth"`
	FormantAmplitude  *float64 `yaml:"formant_amplitude"`
	PulseRate         *float64 `yaml:"pulse_rate"`
	PulseDepth        *float64 `yaml:"pulse_depth"`
	VentricularFolds  *bool    `yaml:"ventricular_folds"`
	ChestVoice        *bool    `yaml:"chest_voice"`
	FormantModulation *bool    `yaml:"formant_modulation"`
	SharpResonance    *bool    `yaml:"sharp_resonance"`
}

type phonemeEntry struct {
	IPA          string             `yaml:"ipa"`
	Category     string             `yaml:"category"`
	Formants     *formantsEntry     `yaml:"formants"`
	Articulatory *articulatoryEntry `yaml:"articulatory"`
	Temporal     *temporalEntry     `yaml:"temporal"`
	Subharmonic  *subharmonicEntry  `yaml:"subharmonic"`
}

// ParseLanguage decodes a language definition. The format is YAML,
// which also accepts the JSON documents the data set originated as.
// A language with no phonemes is an error; a single malformed phoneme
// entry is logged and skipped so one bad record does not lose the
// whole language.
func ParseLanguage(r io.Reader) (*Language, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("phoneme: read language file: %w", err)
	}

	var file languageFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("phoneme: decode language file: %w", err)
	}
	if len(file.Phonemes) == 0 {
		return nil, fmt.Errorf("phoneme: language file has no phonemes")
	}

	lang := &Language{
		Name:       file.Name,
		Rules:      file.Rules,
		Dictionary: file.Dict,
		Synthesis:  file.Synthesis,
	}
	for symbol, node := range file.Phonemes {
		p, err := parsePhonemeEntry(symbol, &node)
		if err != nil {
			slog.Warn("skipping malformed phoneme entry",
				"language", file.Name, "symbol", symbol, "error", err)
			continue
		}
		lang.Phonemes = append(lang.Phonemes, p)
	}
	if len(lang.Phonemes) == 0 {
		return nil, fmt.Errorf("phoneme: no valid phoneme entries in language %q", file.Name)
	}
	return lang, nil
}

func parsePhonemeEntry(symbol string, node *yaml.Node) (*Phoneme, error) {
	var entry phonemeEntry
	if err := node.Decode(&entry); err != nil {
		return nil, err
	}

	p := New(symbol)
	p.IPA = entry.IPA
	if entry.Category != "" {
		p.Category = ParseCategory(entry.Category)
	}
	if entry.Formants != nil {
		applyFormants(&p.Formants, entry.Formants)
	}
	if a := entry.Articulatory; a != nil {
		setBool(&p.Articulatory.Nasal, a.Nasal)
		setBool(&p.Articulatory.Rounded, a.Rounded)
		setBool(&p.Articulatory.Voiced, a.Voiced)
		setBool(&p.Articulatory.Lateral, a.Lateral)
		setBool(&p.Articulatory.Rhotic, a.Rhotic)
	}
	if t := entry.Temporal; t != nil {
		setInt(&p.Temporal.MinDurationMs, t.Min)
		setInt(&p.Temporal.MaxDurationMs, t.Max)
		setInt(&p.Temporal.DefaultDurationMs, t.Default)
	}
	if s := entry.Subharmonic; s != nil {
		setFloat(&p.Subharmonic.FundamentalFreq, s.FundamentalFreq)
		setFloat(&p.Subharmonic.Ratio, s.Ratio)
		setFloat(&p.Subharmonic.Amplitude, s.Amplitude)
		setFloat(&p.Subharmonic.FormantCenterFreq, s.FormantCenterFreq)
		setFloat(&p.Subharmonic.FormantBandwidth, s.FormantBandwidth)
		setFloat(&p.Subharmonic.FormantAmplitude, s.FormantAmplitude)
		setFloat(&p.Subharmonic.PulseRate, s.PulseRate)
		setFloat(&p.Subharmonic.PulseDepth, s.PulseDepth)
		setBool(&p.Subharmonic.VentricularFolds, s.VentricularFolds)
		setBool(&p.Subharmonic.ChestVoice, s.ChestVoice)
		setBool(&p.Subharmonic.FormantModulation, s.FormantModulation)
		setBool(&p.Subharmonic.SharpResonance, s.SharpResonance)
	}
	return p, nil
}

// applyFormants accepts either the array form (frequencies/bandwidths)
// or the individual f1..f4 / bw1..bw4 fields.
func applyFormants(dst *Formants, src *formantsEntry) {
	if len(src.Frequencies) > 0 {
		for i := 0; i < 4 && i < len(src.Frequencies); i++ {
			dst.Frequencies[i] = src.Frequencies[i]
		}
	} else {
		setFloat(&dst.Frequencies[0], src.F1)
		setFloat(&dst.Frequencies[1], src.F2)
		setFloat(&dst.Frequencies[2], src.F3)
		setFloat(&dst.Frequencies[3], src.F4)
	}
	if len(src.Bandwidths) > 0 {
		for i := 0; i < 4 && i < len(src.Bandwidths); i++ {
			dst.Bandwidths[i] = src.Bandwidths[i]
		}
	} else {
		setFloat(&dst.Bandwidths[0], src.BW1)
		setFloat(&dst.Bandwidths[1], src.BW2)
		setFloat(&dst.Bandwidths[2], src.BW3)
		setFloat(&dst.Bandwidths[3], src.BW4)
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// LoadLanguageReader parses a language definition and installs its
// phoneme inventory. On error the previous language stays loaded.
func (d *Database) LoadLanguageReader(r io.Reader) (*Language, error) {
	lang, err := ParseLanguage(r)
	if err != nil {
		return nil, err
	}
	d.install(lang.Name, lang.Phonemes)
	slog.Info("language loaded", "language", lang.Name,
		"phonemes", len(lang.Phonemes), "rules", len(lang.Rules),
		"dictionary", len(lang.Dictionary))
	return lang, nil
}
