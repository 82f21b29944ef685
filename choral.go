// Package choral synthesizes singing voices from text: a
// grapheme-to-phoneme front end over a loadable phoneme database,
// rendered by formant, subharmonic, or diphone synthesis.
package choral

import (
	"fmt"

	"github.com/bretbouchard/choral-v2-sub002/g2p"
	"github.com/bretbouchard/choral-v2-sub002/phoneme"
	"github.com/bretbouchard/choral-v2-sub002/synth"
)

// Synthesizer is the top-level text-to-voice renderer.
type Synthesizer struct {
	db     *phoneme.Database
	engine *g2p.Engine
	method synth.Method
	params *Parameters

	sampleRate float64
	blockSize  int
	speechRate float64 // words per second; 0 = language default
	pitch      float64 // Hz; 0 = per-phoneme targets
	vibrato    *synth.Vibrato
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMethod selects the synthesis strategy: "formant" (default),
// "subharmonic", or "diphone".
func WithMethod(name string) Option {
	return func(s *Synthesizer) {
		if m, err := synth.NewMethod(name); err == nil {
			s.method = m
		}
	}
}

// WithSampleRate sets the render sample rate in Hz (default 44100).
func WithSampleRate(sr float64) Option {
	return func(s *Synthesizer) {
		s.sampleRate = sr
	}
}

// WithBlockSize sets the internal render block size in samples
// (default 512).
func WithBlockSize(n int) Option {
	return func(s *Synthesizer) {
		s.blockSize = n
	}
}

// WithSpeechRate overrides the language's speech rate in words per
// second.
func WithSpeechRate(rate float64) Option {
	return func(s *Synthesizer) {
		s.speechRate = rate
	}
}

// WithPitch fixes the voice fundamental in Hz instead of the
// per-phoneme pitch targets.
func WithPitch(hz float64) Option {
	return func(s *Synthesizer) {
		s.pitch = hz
	}
}

// WithVibrato configures the vibrato LFO for methods that support it.
func WithVibrato(v synth.Vibrato) Option {
	return func(s *Synthesizer) {
		s.vibrato = &v
	}
}

// WithParameters installs a shared parameter surface.
func WithParameters(p *Parameters) Option {
	return func(s *Synthesizer) {
		if p != nil {
			s.params = p
		}
	}
}

// NewSynthesizer loads a language file and builds a ready-to-render
// synthesizer.
func NewSynthesizer(langPath string, opts ...Option) (*Synthesizer, error) {
	db := phoneme.NewDatabase()
	lang, err := db.LoadLanguage(langPath)
	if err != nil {
		return nil, err
	}
	return newSynthesizer(db, lang, opts...)
}

// NewSynthesizerFromDatabase builds a synthesizer over an already
// loaded database. lang supplies the conversion rules and dictionary;
// it may be nil for databases driven purely by custom rules.
func NewSynthesizerFromDatabase(db *phoneme.Database, lang *phoneme.Language, opts ...Option) (*Synthesizer, error) {
	if db == nil {
		return nil, fmt.Errorf("choral: nil database")
	}
	return newSynthesizer(db, lang, opts...)
}

func newSynthesizer(db *phoneme.Database, lang *phoneme.Language, opts ...Option) (*Synthesizer, error) {
	engine, err := g2p.NewEngine(db)
	if err != nil {
		return nil, err
	}
	if lang != nil {
		engine.SetLanguage(lang)
	}

	s := &Synthesizer{
		db:         db,
		engine:     engine,
		params:     NewParameters(),
		sampleRate: 44100,
		blockSize:  512,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.method == nil {
		s.method = synth.NewFormantMethod()
	}
	if s.sampleRate <= 0 || s.blockSize <= 0 {
		return nil, fmt.Errorf("choral: sample rate %g and block size %d must be positive",
			s.sampleRate, s.blockSize)
	}

	if err := s.method.Prepare(synth.Params{
		SampleRate:   s.sampleRate,
		MaxBlockSize: s.blockSize,
	}); err != nil {
		return nil, err
	}
	s.configureMethod()
	return s, nil
}

// configureMethod pushes parameter-level configuration down to the
// selected method.
func (s *Synthesizer) configureMethod() {
	switch m := s.method.(type) {
	case *synth.FormantMethod:
		if s.vibrato != nil {
			m.SetVibrato(*s.vibrato)
		}
		if speed, ok := s.params.Get("transitionSpeed"); ok {
			// Speed 0 is the slowest glide (200 ms), 1 the fastest (10 ms).
			m.SetTransitionTime(0.2 - 0.19*speed)
		}
	case *synth.SubharmonicMethod:
		if ratio, ok := s.params.Get("subharmonicRatio"); ok {
			m.SetRatio(ratio)
		}
		if amount, ok := s.params.Get("spectralEnhancement"); ok && amount > 0 {
			focus, _ := s.params.Get("harmonicFocus")
			m.EnableEnhancement(true, amount, focus)
		}
	case *synth.DiphoneMethod:
		if speed, ok := s.params.Get("transitionSpeed"); ok {
			m.SetTransitionDuration(0.3 - 0.25*speed)
		}
	}
}

// Method returns the active synthesis method.
func (s *Synthesizer) Method() synth.Method { return s.method }

// Parameters returns the shared parameter surface.
func (s *Synthesizer) Parameters() *Parameters { return s.params }

// Database returns the loaded phoneme database.
func (s *Synthesizer) Database() *phoneme.Database { return s.db }

// Engine returns the grapheme-to-phoneme engine for custom rules and
// dictionary entries.
func (s *Synthesizer) Engine() *g2p.Engine { return s.engine }

// ApplyPreset installs a named overtone-singing style. It is an error
// unless the subharmonic method is active.
func (s *Synthesizer) ApplyPreset(name string) error {
	m, ok := s.method.(*synth.SubharmonicMethod)
	if !ok {
		return fmt.Errorf("choral: presets need the subharmonic method, have %q", s.method.Name())
	}
	return m.ApplyPreset(name)
}

// Convert runs the text through the grapheme-to-phoneme engine.
func (s *Synthesizer) Convert(text string) *g2p.Result {
	if s.speechRate > 0 {
		return s.engine.ConvertWithTiming(text, s.speechRate)
	}
	return s.engine.Convert(text)
}

// RenderText converts text and renders it to mono samples at the
// configured sample rate.
func (s *Synthesizer) RenderText(text string) ([]float64, error) {
	return s.RenderPhonemes(s.Convert(text).Phonemes)
}

// RenderPhonemes renders a timed phoneme sequence. Each phoneme plays
// for its duration at its pitch target (or the fixed pitch override);
// the following phoneme is passed down so transition-aware methods can
// glide.
func (s *Synthesizer) RenderPhonemes(phonemes []g2p.PhonemeResult) ([]float64, error) {
	if len(phonemes) == 0 {
		return nil, nil
	}

	amp := 0.8
	if v, ok := s.params.Get("masterVolume"); ok {
		amp = v
	}

	var total int
	for _, pr := range phonemes {
		total += s.durationSamples(pr.Duration)
	}
	out := make([]float64, 0, total)
	block := make([]float64, s.blockSize)

	for i, pr := range phonemes {
		cur, _ := s.db.Lookup(pr.Symbol)
		var next *phoneme.Phoneme
		if i+1 < len(phonemes) {
			next, _ = s.db.Lookup(phonemes[i+1].Symbol)
		}

		freq := s.pitch
		if freq <= 0 {
			freq = pr.Pitch
		}
		if freq <= 0 {
			freq = 220
		}

		remaining := s.durationSamples(pr.Duration)
		for remaining > 0 {
			n := remaining
			if n > s.blockSize {
				n = s.blockSize
			}
			if err := s.method.Process(freq, amp, cur, next, block[:n]); err != nil {
				return nil, err
			}
			out = append(out, block[:n]...)
			remaining -= n
		}
	}
	return out, nil
}

func (s *Synthesizer) durationSamples(seconds float64) int {
	n := int(seconds * s.sampleRate)
	if n < 1 {
		n = 1
	}
	return n
}

// Reset clears all render state so the next call starts from silence.
func (s *Synthesizer) Reset() {
	s.method.Reset()
}
