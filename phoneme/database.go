package phoneme

import (
	"fmt"
	"os"
	"sync"
)

// Database owns the phoneme inventory of the currently loaded language.
// One map keyed by symbol holds the records; IPA and category indexes
// are derived views over the same pointers and are rebuilt together so
// the three stay consistent. All access goes through one mutex: loads
// are rare and happen off the render path, lookups are cheap.
type Database struct {
	mu         sync.Mutex
	symbols    map[string]*Phoneme
	ipa        map[string]*Phoneme
	categories map[Category][]*Phoneme
	language   string
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{
		symbols:    make(map[string]*Phoneme),
		ipa:        make(map[string]*Phoneme),
		categories: make(map[Category][]*Phoneme),
	}
}

// LoadLanguage reads a language file and replaces the current
// inventory. On any error the previous language is kept intact.
func (d *Database) LoadLanguage(path string) (*Language, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("phoneme: open language file: %w", err)
	}
	defer f.Close()
	return d.LoadLanguageReader(f)
}

// Language returns the name of the loaded language, or "" when empty.
func (d *Database) Language() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.language
}

// install atomically replaces the inventory with a freshly parsed one.
func (d *Database) install(name string, phonemes []*Phoneme) {
	symbols := make(map[string]*Phoneme, len(phonemes))
	ipa := make(map[string]*Phoneme, len(phonemes))
	categories := make(map[Category][]*Phoneme)
	for _, p := range phonemes {
		symbols[p.Symbol] = p
		if p.IPA != "" {
			ipa[p.IPA] = p
		}
		categories[p.Category] = append(categories[p.Category], p)
	}

	d.mu.Lock()
	d.symbols = symbols
	d.ipa = ipa
	d.categories = categories
	d.language = name
	d.mu.Unlock()
}

// Lookup returns the phoneme with the given symbol.
func (d *Database) Lookup(symbol string) (*Phoneme, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.symbols[symbol]
	return p, ok
}

// LookupIPA returns the phoneme with the given IPA symbol.
func (d *Database) LookupIPA(ipa string) (*Phoneme, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.ipa[ipa]
	return p, ok
}

// Has reports whether a symbol is present.
func (d *Database) Has(symbol string) bool {
	_, ok := d.Lookup(symbol)
	return ok
}

// ByCategory returns the phonemes of one category. The returned slice
// is a copy; the records it points to are shared and immutable.
func (d *Database) ByCategory(c Category) []*Phoneme {
	d.mu.Lock()
	defer d.mu.Unlock()
	src := d.categories[c]
	out := make([]*Phoneme, len(src))
	copy(out, src)
	return out
}

// Categories returns the categories that currently have at least one
// phoneme.
func (d *Database) Categories() []Category {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Category, 0, len(d.categories))
	for c := range d.categories {
		out = append(out, c)
	}
	return out
}

// All returns every loaded phoneme.
func (d *Database) All() []*Phoneme {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Phoneme, 0, len(d.symbols))
	for _, p := range d.symbols {
		out = append(out, p)
	}
	return out
}

// Len returns the number of loaded phonemes.
func (d *Database) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.symbols)
}

// Clear drops the loaded language.
func (d *Database) Clear() {
	d.mu.Lock()
	d.symbols = make(map[string]*Phoneme)
	d.ipa = make(map[string]*Phoneme)
	d.categories = make(map[Category][]*Phoneme)
	d.language = ""
	d.mu.Unlock()
}

// Diphone returns the formant configuration at position t in a
// transition from one phoneme to another. t is clamped to [0, 1].
func (d *Database) Diphone(from, to *Phoneme, t float64) Formants {
	if from == nil && to == nil {
		return DefaultFormants()
	}
	if from == nil {
		return to.Formants
	}
	if to == nil {
		return from.Formants
	}
	return from.Formants.Lerp(to.Formants, t)
}
