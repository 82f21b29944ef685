package synth

import "github.com/bretbouchard/choral-v2-sub002/phoneme"

// formantSet is the five-formant target used by the formant method.
type formantSet struct {
	freqs [5]float64
	bands [5]float64
}

// Peterson & Barney (1952) vowel formants, adult male speakers, with
// a fifth formant extrapolated for vocal brightness.
var vowelFormantTable = map[string]formantSet{
	"i": {[5]float64{270, 2300, 3000, 3500, 4500}, [5]float64{60, 90, 120, 130, 140}},
	"ɪ": {[5]float64{390, 2000, 2800, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"ɛ": {[5]float64{530, 1800, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"æ": {[5]float64{660, 1700, 2600, 3500, 4500}, [5]float64{60, 90, 120, 130, 140}},
	"ɑ": {[5]float64{730, 1090, 2440, 3500, 4500}, [5]float64{80, 100, 120, 130, 140}},
	"ʌ": {[5]float64{570, 1200, 2500, 3500, 4500}, [5]float64{70, 100, 120, 130, 140}},
	"o": {[5]float64{570, 840, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"ɔ": {[5]float64{440, 1020, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"u": {[5]float64{300, 870, 2250, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"ʊ": {[5]float64{440, 1020, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"ə": {[5]float64{500, 1500, 2500, 3500, 4500}, [5]float64{60, 90, 120, 130, 140}},
}

// Consonant formant targets. Sibilants sit high with wide bandwidths;
// nasals and stops stay near the neutral tract.
var consonantFormantTable = map[string]formantSet{
	"s": {[5]float64{5000, 6000, 7000, 8000, 9000}, [5]float64{1000, 1000, 1000, 1000, 1000}},
	"ʃ": {[5]float64{3000, 4000, 5000, 6000, 7000}, [5]float64{1000, 1000, 1000, 1000, 1000}},
	"f": {[5]float64{4000, 5000, 6000, 7000, 8000}, [5]float64{1000, 1000, 1000, 1000, 1000}},
	"m": {[5]float64{300, 1200, 2500, 3500, 4500}, [5]float64{50, 100, 120, 130, 140}},
	"n": {[5]float64{350, 1400, 2500, 3500, 4500}, [5]float64{50, 100, 120, 130, 140}},
	"p": {[5]float64{300, 1200, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"t": {[5]float64{400, 1500, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
	"k": {[5]float64{500, 1800, 2500, 3500, 4500}, [5]float64{50, 80, 120, 130, 140}},
}

var schwaFormants = vowelFormantTable["ə"]

// formantsFor resolves the five-formant target for a phoneme: the
// vowel/consonant tables by IPA symbol first, then the phoneme's own
// four-formant data extended with a neutral F5, then schwa.
func formantsFor(p *phoneme.Phoneme) formantSet {
	if p == nil {
		return schwaFormants
	}
	if fs, ok := vowelFormantTable[p.IPA]; ok {
		return fs
	}
	if fs, ok := consonantFormantTable[p.IPA]; ok {
		return fs
	}
	var fs formantSet
	for i := 0; i < 4; i++ {
		fs.freqs[i] = p.Formants.Frequencies[i]
		fs.bands[i] = p.Formants.Bandwidths[i]
	}
	fs.freqs[4] = 4500
	fs.bands[4] = 140
	return fs
}
