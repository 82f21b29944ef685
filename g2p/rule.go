// Package g2p converts text to timed phoneme sequences using a
// per-language dictionary and an ordered rule set over a phoneme
// database. Conversion never hard-fails: anything unmatched degrades
// to one-character literal phonemes.
package g2p

import (
	"sort"
	"strings"
	"unicode"
)

// Rule rewrites a grapheme pattern to a phoneme sequence. Patterns are
// literal substrings matched against the lowercase word at the scan
// cursor; anchors and context constrain where the match may apply.
type Rule struct {
	Pattern   string
	Phonemes  []string
	Priority  int
	WordStart bool
	WordEnd   bool
	Preceding string // literal text required immediately before the match
	Following string // literal text required immediately after the match
	Class     string // "vowel" or "consonant": class of the preceding rune

	seq int // registration order, breaks priority ties
}

// matches reports whether the rule applies to word at rune offset pos.
// word is already lowercase.
func (r *Rule) matches(word []rune, pos int) bool {
	pattern := []rune(r.Pattern)
	if len(pattern) == 0 || pos+len(pattern) > len(word) {
		return false
	}
	for i, pr := range pattern {
		if word[pos+i] != pr {
			return false
		}
	}
	end := pos + len(pattern)

	if r.WordStart && pos != 0 {
		return false
	}
	if r.WordEnd && end != len(word) {
		return false
	}
	if r.Preceding != "" && !strings.HasSuffix(string(word[:pos]), r.Preceding) {
		return false
	}
	if r.Following != "" && !strings.HasPrefix(string(word[end:]), r.Following) {
		return false
	}
	switch r.Class {
	case "vowel":
		if pos == 0 || !isVowelRune(word[pos-1]) {
			return false
		}
	case "consonant":
		if pos == 0 || isVowelRune(word[pos-1]) || !unicode.IsLetter(word[pos-1]) {
			return false
		}
	}
	return true
}

func isVowelRune(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// sortRules orders rules for matching: highest priority first, equal
// priority in registration order.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].seq < rules[j].seq
	})
}
