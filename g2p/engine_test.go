package g2p

import (
	"strings"
	"testing"

	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

const testLanguage = `
name: test
phonemes:
  AA:
    ipa: "ɑ"
    category: vowel
    temporal:
      default_duration: 200
  K:
    ipa: "k"
    category: consonant
    articulatory:
      is_voiced: false
    temporal:
      default_duration: 90
  M:
    ipa: "m"
    category: consonant
rules:
  - pattern: "ck"
    phonemes: [K]
    priority: 10
  - pattern: "c"
    phonemes: [K]
    priority: 5
  - pattern: "a"
    phonemes: [AA]
    priority: 5
  - pattern: "m"
    phonemes: [M]
    priority: 5
dictionary:
  mama: [M, AA, M, AA]
synthesis:
  speech_rate: 4.0
  default_pitch: 220
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db := phoneme.NewDatabase()
	lang, err := db.LoadLanguageReader(strings.NewReader(testLanguage))
	if err != nil {
		t.Fatalf("load language: %v", err)
	}
	e, err := NewEngine(db)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.SetLanguage(lang)
	return e
}

func symbols(res *Result) []string {
	out := make([]string, len(res.Phonemes))
	for i, p := range res.Phonemes {
		out[i] = p.Symbol
	}
	return out
}

func TestNewEngineNilDatabase(t *testing.T) {
	if _, err := NewEngine(nil); err == nil {
		t.Error("NewEngine(nil): want error")
	}
}

func TestConvertEmptyInput(t *testing.T) {
	e := newTestEngine(t)
	for _, text := range []string{"", "   ", "?!.,;", "\t\n"} {
		res := e.Convert(text)
		if len(res.Phonemes) != 0 {
			t.Errorf("Convert(%q): %d phonemes, want 0", text, len(res.Phonemes))
		}
		if res.Words != 0 {
			t.Errorf("Convert(%q): %d words, want 0", text, res.Words)
		}
	}
}

func TestConvertDictionaryHit(t *testing.T) {
	e := newTestEngine(t)
	res := e.Convert("Mama")
	want := []string{"M", "AA", "M", "AA"}
	got := symbols(res)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phoneme %d: %s, want %s", i, got[i], want[i])
		}
	}
	if res.Stats.DictionaryHits != 1 {
		t.Errorf("dictionary hits = %d, want 1", res.Stats.DictionaryHits)
	}
	if res.Stats.RuleMatches != 0 {
		t.Errorf("rule matches = %d, want 0", res.Stats.RuleMatches)
	}
}

func TestCustomDictionaryWinsOverLanguage(t *testing.T) {
	e := newTestEngine(t)
	e.AddDictionaryEntry("mama", []string{"K"})
	if got := symbols(e.Convert("mama")); len(got) != 1 || got[0] != "K" {
		t.Errorf("got %v, want [K]", got)
	}
	e.ClearCustom()
	if got := symbols(e.Convert("mama")); len(got) != 4 {
		t.Errorf("after ClearCustom: got %v, want dictionary pronunciation", got)
	}
}

func TestRuleMatchingAndFallback(t *testing.T) {
	e := newTestEngine(t)
	res := e.Convert("ckz")
	got := symbols(res)
	// "ck" matches the priority-10 rule, "z" has no rule and falls back
	// to the literal character.
	want := []string{"K", "z"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
	if res.Stats.RuleMatches != 1 {
		t.Errorf("rule matches = %d, want 1", res.Stats.RuleMatches)
	}
	if res.Stats.Fallbacks != 1 {
		t.Errorf("fallbacks = %d, want 1", res.Stats.Fallbacks)
	}
}

func TestHigherPriorityWins(t *testing.T) {
	e := newTestEngine(t)
	// "ca": the "ck" rule cannot match, "c" (priority 5) applies.
	got := symbols(e.Convert("ca"))
	if len(got) != 2 || got[0] != "K" || got[1] != "AA" {
		t.Errorf("got %v, want [K AA]", got)
	}
}

func TestEqualPriorityFirstRegisteredWins(t *testing.T) {
	e := newTestEngine(t)
	e.AddRule(Rule{Pattern: "x", Phonemes: []string{"FIRST"}, Priority: 7})
	e.AddRule(Rule{Pattern: "x", Phonemes: []string{"SECOND"}, Priority: 7})
	got := symbols(e.Convert("x"))
	if len(got) != 1 || got[0] != "FIRST" {
		t.Errorf("got %v, want [FIRST]", got)
	}
}

func TestContextConstraints(t *testing.T) {
	e := newTestEngine(t)
	e.AddRule(Rule{Pattern: "s", Phonemes: []string{"START"}, Priority: 20, WordStart: true})
	e.AddRule(Rule{Pattern: "s", Phonemes: []string{"END"}, Priority: 19, WordEnd: true})
	e.AddRule(Rule{Pattern: "t", Phonemes: []string{"AFTERVOWEL"}, Priority: 20, Class: "vowel"})
	e.AddRule(Rule{Pattern: "d", Phonemes: []string{"AFTERE"}, Priority: 20, Preceding: "e"})
	e.AddRule(Rule{Pattern: "n", Phonemes: []string{"BEFOREG"}, Priority: 20, Following: "g"})

	tests := []struct {
		word string
		want string // expected symbol somewhere in the output
	}{
		{"sz", "START"},
		{"zs", "END"},
		{"at", "AFTERVOWEL"},
		{"ed", "AFTERE"},
		{"zng", "BEFOREG"},
	}
	for _, tt := range tests {
		got := symbols(e.Convert(tt.word))
		found := false
		for _, s := range got {
			if s == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("Convert(%q) = %v, want %s applied", tt.word, got, tt.want)
		}
	}

	// Context not satisfied: word-start rule must not fire mid-word,
	// class rule must not fire after a consonant.
	for _, word := range []string{"zsz", "zt"} {
		got := symbols(e.Convert(word))
		for _, s := range got {
			if s == "START" && word == "zsz" {
				// "s" at position 1 is neither start nor end.
				t.Errorf("Convert(%q): word-start rule fired mid-word", word)
			}
			if s == "AFTERVOWEL" && word == "zt" {
				t.Errorf("Convert(%q): vowel-class rule fired after consonant", word)
			}
		}
	}
}

func TestLiteralFallbackOnLongInput(t *testing.T) {
	e := newTestEngine(t)
	text := strings.Repeat("z", 12000)
	res := e.Convert(text)
	if len(res.Phonemes) != 12000 {
		t.Fatalf("got %d phonemes, want 12000", len(res.Phonemes))
	}
	if res.Stats.Fallbacks != 12000 {
		t.Errorf("fallbacks = %d, want 12000", res.Stats.Fallbacks)
	}
	for i, p := range res.Phonemes {
		if p.Symbol != "z" {
			t.Fatalf("phoneme %d = %q, want literal z", i, p.Symbol)
		}
	}
}

func TestConvertDeterministic(t *testing.T) {
	e := newTestEngine(t)
	const text = "mama cka zzz Mama"
	a := e.Convert(text)
	b := e.Convert(text)
	if len(a.Phonemes) != len(b.Phonemes) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Phonemes), len(b.Phonemes))
	}
	for i := range a.Phonemes {
		pa, pb := a.Phonemes[i], b.Phonemes[i]
		if pa.Symbol != pb.Symbol || pa.Duration != pb.Duration ||
			pa.Stressed != pb.Stressed || pa.Position != pb.Position {
			t.Fatalf("phoneme %d differs: %+v vs %+v", i, pa, pb)
		}
	}
}

func TestDurations(t *testing.T) {
	e := newTestEngine(t)

	// Known symbol at the neutral rate (4): database default, 200 ms.
	res := e.ConvertWithTiming("a", 4)
	if got := res.Phonemes[0].Duration; got != 0.2 {
		t.Errorf("AA duration at rate 4 = %f, want 0.2", got)
	}

	// Halving the rate doubles every duration.
	res = e.ConvertWithTiming("a", 2)
	if got := res.Phonemes[0].Duration; got != 0.4 {
		t.Errorf("AA duration at rate 2 = %f, want 0.4", got)
	}

	// Unknown single characters use the vowel/consonant heuristic.
	res = e.ConvertWithTiming("ez", 4)
	if got := res.Phonemes[0].Duration; got != vowelFallbackSec {
		t.Errorf("fallback vowel duration = %f, want %f", got, vowelFallbackSec)
	}
	if got := res.Phonemes[1].Duration; got != consonantFallbackSec {
		t.Errorf("fallback consonant duration = %f, want %f", got, consonantFallbackSec)
	}

	// Degenerate rate falls back to 1.
	res = e.ConvertWithTiming("z", 0)
	if got := res.Phonemes[0].Duration; got != consonantFallbackSec*4 {
		t.Errorf("duration at rate 0 = %f, want %f", got, consonantFallbackSec*4)
	}

	var sum float64
	res = e.ConvertWithTiming("mama mama", 4)
	for _, p := range res.Phonemes {
		sum += p.Duration
	}
	if res.TotalDuration != sum {
		t.Errorf("TotalDuration = %f, want sum of durations %f", res.TotalDuration, sum)
	}
}

func TestFirstVowelStressed(t *testing.T) {
	e := newTestEngine(t)
	res := e.Convert("mama")
	var stressed []int
	for i, p := range res.Phonemes {
		if p.Stressed {
			stressed = append(stressed, i)
		}
	}
	if len(stressed) != 1 || stressed[0] != 1 {
		t.Errorf("stressed indexes = %v, want [1]", stressed)
	}

	// Syllable indexes advance at each vowel nucleus.
	if res.Phonemes[1].Syllable != 0 || res.Phonemes[3].Syllable != 1 {
		t.Errorf("syllables = %d, %d, want 0, 1",
			res.Phonemes[1].Syllable, res.Phonemes[3].Syllable)
	}
}

func TestPhonemeString(t *testing.T) {
	e := newTestEngine(t)
	res := e.Convert("mama ca")
	if got := res.PhonemeString(); got != "/M AA M AA/ /K AA/" {
		t.Errorf("PhonemeString() = %q", got)
	}
}

func TestUnicodeNormalization(t *testing.T) {
	e := newTestEngine(t)
	// "a" + combining acute composes to a single precomposed rune, so
	// both spellings tokenize identically.
	composed := e.Convert("café")
	decomposed := e.Convert("café")
	if len(composed.Phonemes) != len(decomposed.Phonemes) {
		t.Fatalf("NFC mismatch: %d vs %d phonemes",
			len(composed.Phonemes), len(decomposed.Phonemes))
	}
	for i := range composed.Phonemes {
		if composed.Phonemes[i].Symbol != decomposed.Phonemes[i].Symbol {
			t.Fatalf("phoneme %d: %q vs %q", i,
				composed.Phonemes[i].Symbol, decomposed.Phonemes[i].Symbol)
		}
	}
}
