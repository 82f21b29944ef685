// Package synth implements the three synthesis strategies behind one
// polymorphic contract: formant, subharmonic, and diphone. A Method
// instance holds the state of exactly one voice; orchestration creates
// one instance per voice and drives it block by block.
package synth

import (
	"fmt"

	"github.com/bretbouchard/choral-v2-sub002/phoneme"
)

// Params configures a method at preparation time and is immutable
// afterwards.
type Params struct {
	SampleRate   float64
	MaxBlockSize int
	EnableSIMD   bool
	Oversampling bool
}

func (p Params) validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("synth: sample rate %g must be positive", p.SampleRate)
	}
	if p.MaxBlockSize <= 0 {
		return fmt.Errorf("synth: max block size %d must be positive", p.MaxBlockSize)
	}
	return nil
}

// Method is the synthesis-strategy contract. Process renders one block
// for one voice: the current phoneme, the next phoneme when a
// transition is in progress (nil otherwise), the voice fundamental in
// Hz and amplitude in [0, 1]. Implementations do not allocate inside
// Process.
type Method interface {
	Prepare(Params) error
	Process(freq, amp float64, cur, next *phoneme.Phoneme, out []float64) error
	Reset()
	Name() string
}

var errNotPrepared = fmt.Errorf("synth: method not prepared")

func errBlockTooLarge(n, max int) error {
	return fmt.Errorf("synth: block of %d samples exceeds prepared maximum %d", n, max)
}

// NewMethod returns a fresh method instance by name: "formant",
// "subharmonic", or "diphone".
func NewMethod(name string) (Method, error) {
	switch name {
	case "formant":
		return NewFormantMethod(), nil
	case "subharmonic":
		return NewSubharmonicMethod(), nil
	case "diphone":
		return NewDiphoneMethod(), nil
	}
	return nil, fmt.Errorf("synth: unknown method %q", name)
}
