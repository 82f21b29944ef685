package g2p

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

// PhonemeResult is one timed phoneme of a conversion, owned by the
// caller. Position is the rune offset of the originating character in
// the normalized input.
type PhonemeResult struct {
	Symbol   string
	Duration float64 // seconds
	Pitch    float64 // Hz target
	Stressed bool
	Position int
	Syllable int // syllable index within the word
}

// Stats tracks how a conversion resolved its words.
type Stats struct {
	DictionaryHits int
	RuleMatches    int
	Fallbacks      int
	Elapsed        time.Duration
}

// Result is the output of one conversion.
type Result struct {
	Phonemes      []PhonemeResult
	Words         int
	TotalDuration float64 // seconds
	Stats         Stats

	wordSpans []wordSpan
}

type wordSpan struct{ start, end int }

// PhonemeString renders the result as slash-delimited per-word groups,
// e.g. "/k a/ /m a m a/".
func (r *Result) PhonemeString() string {
	var b strings.Builder
	for w, span := range r.wordSpans {
		if w > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('/')
		for i := span.start; i < span.end; i++ {
			if i > span.start {
				b.WriteByte(' ')
			}
			b.WriteString(r.Phonemes[i].Symbol)
		}
		b.WriteByte('/')
	}
	return b.String()
}

// Durations used when the database has no record for a symbol.
const (
	vowelFallbackSec     = 0.12
	consonantFallbackSec = 0.07
	multiCharFallbackSec = 0.15
)

// Engine converts text to phonemes for one language. Not safe for
// concurrent use; each goroutine should own an engine, sharing the
// read-only database underneath.
type Engine struct {
	db *phoneme.Database

	rules       []Rule
	langDict    map[string][]string
	customDict  map[string][]string
	customRules []Rule
	langRules   []Rule
	seq         int

	defaultPitch float64
	speechRate   float64
}

// NewEngine returns an engine over db with no language rules yet.
func NewEngine(db *phoneme.Database) (*Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("g2p: nil phoneme database")
	}
	return &Engine{
		db:           db,
		langDict:     map[string][]string{},
		customDict:   map[string][]string{},
		defaultPitch: 220,
		speechRate:   1,
	}, nil
}

// SetLanguage installs the rules, dictionary, and synthesis defaults of
// a parsed language, replacing any previous language. Custom rules and
// dictionary entries survive language switches.
func (e *Engine) SetLanguage(lang *phoneme.Language) {
	e.langRules = e.langRules[:0]
	for _, lr := range lang.Rules {
		e.seq++
		e.langRules = append(e.langRules, Rule{
			Pattern:   strings.ToLower(lr.Pattern),
			Phonemes:  append([]string(nil), lr.Phonemes...),
			Priority:  lr.Priority,
			WordStart: lr.WordStart,
			WordEnd:   lr.WordEnd,
			Preceding: strings.ToLower(lr.Preceding),
			Following: strings.ToLower(lr.Following),
			Class:     lr.Class,
			seq:       e.seq,
		})
	}
	e.langDict = make(map[string][]string, len(lang.Dictionary))
	for word, phons := range lang.Dictionary {
		e.langDict[strings.ToLower(word)] = append([]string(nil), phons...)
	}
	if lang.Synthesis.DefaultPitch > 0 {
		e.defaultPitch = lang.Synthesis.DefaultPitch
	}
	if lang.Synthesis.SpeechRate > 0 {
		e.speechRate = lang.Synthesis.SpeechRate
	}
	e.rebuildRules()
}

// AddRule registers a custom rule. It competes with language rules by
// priority; on ties, earlier registration wins.
func (e *Engine) AddRule(r Rule) {
	e.seq++
	r.Pattern = strings.ToLower(r.Pattern)
	r.Preceding = strings.ToLower(r.Preceding)
	r.Following = strings.ToLower(r.Following)
	r.seq = e.seq
	e.customRules = append(e.customRules, r)
	e.rebuildRules()
}

// AddDictionaryEntry registers a custom pronunciation that takes
// precedence over the language dictionary and rules.
func (e *Engine) AddDictionaryEntry(word string, phonemes []string) {
	e.customDict[strings.ToLower(word)] = append([]string(nil), phonemes...)
}

// AddDictionary merges custom pronunciations in bulk.
func (e *Engine) AddDictionary(entries map[string][]string) {
	for word, phons := range entries {
		e.AddDictionaryEntry(word, phons)
	}
}

// ClearCustom drops all custom rules and dictionary entries.
func (e *Engine) ClearCustom() {
	e.customRules = nil
	e.customDict = map[string][]string{}
	e.rebuildRules()
}

func (e *Engine) rebuildRules() {
	e.rules = e.rules[:0]
	e.rules = append(e.rules, e.langRules...)
	e.rules = append(e.rules, e.customRules...)
	sortRules(e.rules)
}

// Convert runs the pipeline at the language's default speech rate.
func (e *Engine) Convert(text string) *Result {
	return e.ConvertWithTiming(text, e.speechRate)
}

// ConvertWithTiming converts text at the given speech rate. It never
// fails: empty or unmatchable input produces an empty or literal
// result.
func (e *Engine) ConvertWithTiming(text string, speechRate float64) *Result {
	start := time.Now()
	if speechRate <= 0 {
		speechRate = 1
	}
	scale := 4 / speechRate

	res := &Result{}
	runes := []rune(norm.NFC.String(text))

	for pos := 0; pos < len(runes); {
		r := runes[pos]
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			end := pos
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end])) {
				end++
			}
			e.convertWord(res, runes[pos:end], pos, scale)
			pos = end
		default:
			// Whitespace and punctuation separate words and carry no
			// phonemes.
			pos++
		}
	}

	for _, p := range res.Phonemes {
		res.TotalDuration += p.Duration
	}
	res.Stats.Elapsed = time.Since(start)
	return res
}

// convertWord resolves one word: custom dictionary, then language
// dictionary, then rules, then one-character literal fallback.
func (e *Engine) convertWord(res *Result, word []rune, offset int, scale float64) {
	res.Words++
	lower := strings.ToLower(string(word))
	spanStart := len(res.Phonemes)

	if phons, ok := e.customDict[lower]; ok {
		res.Stats.DictionaryHits++
		for _, sym := range phons {
			res.Phonemes = append(res.Phonemes, e.timed(sym, offset, scale))
		}
	} else if phons, ok := e.langDict[lower]; ok {
		res.Stats.DictionaryHits++
		for _, sym := range phons {
			res.Phonemes = append(res.Phonemes, e.timed(sym, offset, scale))
		}
	} else {
		lowerRunes := []rune(lower)
		for cur := 0; cur < len(lowerRunes); {
			rule := e.matchAt(lowerRunes, cur)
			if rule != nil {
				res.Stats.RuleMatches++
				for _, sym := range rule.Phonemes {
					res.Phonemes = append(res.Phonemes, e.timed(sym, offset+cur, scale))
				}
				cur += len([]rune(rule.Pattern))
			} else {
				res.Stats.Fallbacks++
				res.Phonemes = append(res.Phonemes,
					e.timed(string(lowerRunes[cur]), offset+cur, scale))
				cur++
			}
		}
	}

	e.markStressAndSyllables(res.Phonemes[spanStart:])
	res.wordSpans = append(res.wordSpans, wordSpan{spanStart, len(res.Phonemes)})
}

// matchAt returns the best rule applying at pos, or nil. Rules are
// pre-sorted, so the first hit wins.
func (e *Engine) matchAt(word []rune, pos int) *Rule {
	for i := range e.rules {
		if e.rules[i].matches(word, pos) {
			return &e.rules[i]
		}
	}
	return nil
}

// timed builds a PhonemeResult with the duration policy: database
// default when the symbol is known, otherwise a category heuristic,
// scaled by the speech-rate factor.
func (e *Engine) timed(symbol string, position int, scale float64) PhonemeResult {
	var base float64
	if p, ok := e.db.Lookup(symbol); ok {
		base = float64(p.Temporal.DefaultDurationMs) / 1000
	} else if len([]rune(symbol)) > 1 {
		base = multiCharFallbackSec
	} else if e.isVowelSymbol(symbol) {
		base = vowelFallbackSec
	} else {
		base = consonantFallbackSec
	}
	return PhonemeResult{
		Symbol:   symbol,
		Duration: base * scale,
		Pitch:    e.defaultPitch,
		Position: position,
	}
}

// isVowelSymbol checks the database category first and falls back to a
// literal vowel-letter test.
func (e *Engine) isVowelSymbol(symbol string) bool {
	if p, ok := e.db.Lookup(symbol); ok {
		return p.Category == phoneme.Vowel
	}
	rs := []rune(symbol)
	return len(rs) == 1 && isVowelRune(unicode.ToLower(rs[0]))
}

// markStressAndSyllables stresses the first vowel of the word and
// assigns syllable indexes by counting vowel nuclei. A deliberate
// simplification, not a linguistic model.
func (e *Engine) markStressAndSyllables(word []PhonemeResult) {
	syllable := 0
	seenVowel := false
	for i := range word {
		if e.isVowelSymbol(word[i].Symbol) {
			if seenVowel {
				syllable++
			} else {
				word[i].Stressed = true
				seenVowel = true
			}
		}
		word[i].Syllable = syllable
	}
}
