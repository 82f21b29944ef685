package choral

import (
	"fmt"
	"sort"

	"github.com/bretbouchard/choral-v2-sub002/dsp"
	"github.com/bretbouchard/choral-v2-sub002/internal/mathutil"
	"github.com/bretbouchard/choral-v2-sub002/phoneme"
	"github.com/bretbouchard/choral-v2-sub002/synth"
)

// EventType discriminates voice events.
type EventType int

const (
	NoteOn EventType = iota
	NoteOff
	PitchBend
	Aftertouch
	ControlChange
	ParameterChange
	ResetEvent
)

// Event is one timed control message for a voice. Offset is the
// sample index within the current block at which the event takes
// effect.
type Event struct {
	Type   EventType
	Offset int

	Note     int     // NoteOn, MIDI note number
	Velocity float64 // NoteOn, 0-1

	Value float64 // PitchBend (semitones), Aftertouch (0-1), ControlChange

	Controller int    // ControlChange number
	Name       string // ParameterChange target
}

// Voice drives one synthesis method from timed events. Frequency and
// amplitude moves are smoothed so note changes do not click.
type Voice struct {
	method synth.Method
	params *Parameters

	sampleRate float64
	cur, next  *phoneme.Phoneme

	freqSm *dsp.LinearSmoother
	ampSm  *dsp.LinearSmoother

	note   int
	bend   float64 // semitones
	volume float64 // controller 7 scale
	active bool
}

// NewVoice wraps a prepared method. The params surface is shared with
// the owning synthesizer and may be nil.
func NewVoice(method synth.Method, params *Parameters, sampleRate float64) (*Voice, error) {
	if method == nil {
		return nil, fmt.Errorf("choral: voice needs a method")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("choral: sample rate %g must be positive", sampleRate)
	}
	v := &Voice{
		method:     method,
		params:     params,
		sampleRate: sampleRate,
		freqSm:     dsp.NewLinearSmoother(0.005, sampleRate),
		ampSm:      dsp.NewLinearSmoother(0.005, sampleRate),
		volume:     1,
	}
	v.freqSm.SetTargetImmediate(220)
	return v, nil
}

// SetPhonemes sets the articulation targets used by subsequent blocks.
func (v *Voice) SetPhonemes(cur, next *phoneme.Phoneme) {
	v.cur = cur
	v.next = next
}

// ProcessBlock applies the events at their sample offsets and renders
// one block. Events are handled in non-decreasing offset order
// regardless of their order in the slice.
func (v *Voice) ProcessBlock(events []Event, out []float64) error {
	if len(events) > 1 {
		sorted := make([]Event, len(events))
		copy(sorted, events)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
		events = sorted
	}

	pos := 0
	for _, ev := range events {
		at := ev.Offset
		if at < pos {
			at = pos
		}
		if at > len(out) {
			at = len(out)
		}
		if at > pos {
			if err := v.render(out[pos:at]); err != nil {
				return err
			}
			pos = at
		}
		v.apply(ev)
	}
	if pos < len(out) {
		return v.render(out[pos:])
	}
	return nil
}

func (v *Voice) apply(ev Event) {
	switch ev.Type {
	case NoteOn:
		v.note = ev.Note
		v.active = true
		v.retarget()
		v.ampSm.SetTarget(mathutil.Clamp(ev.Velocity, 0, 1))
	case NoteOff:
		v.active = false
		v.ampSm.SetTarget(0)
	case PitchBend:
		v.bend = ev.Value
		v.retarget()
	case Aftertouch:
		if v.active {
			v.ampSm.SetTarget(mathutil.Clamp(ev.Value, 0, 1))
		}
	case ControlChange:
		if ev.Controller == 7 {
			v.volume = mathutil.Clamp(ev.Value, 0, 1)
		}
	case ParameterChange:
		if v.params != nil {
			// Unknown names are dropped; a voice cannot reject a
			// host automation stream mid-block.
			_ = v.params.Set(ev.Name, ev.Value)
		}
	case ResetEvent:
		v.method.Reset()
		v.note = 0
		v.bend = 0
		v.active = false
		v.ampSm.SetTargetImmediate(0)
	}
}

// retarget recomputes the smoothed frequency from note and bend.
func (v *Voice) retarget() {
	f := mathutil.NoteToFrequency(v.note) * mathutil.SemitoneRatio(v.bend)
	v.freqSm.SetTarget(f)
}

func (v *Voice) render(out []float64) error {
	freq := v.advance(v.freqSm, len(out))
	amp := v.advance(v.ampSm, len(out)) * v.volume
	return v.method.Process(freq, amp, v.cur, v.next, out)
}

// advance steps a smoother through n samples and returns the final
// value, one scalar per render segment.
func (v *Voice) advance(s *dsp.LinearSmoother, n int) float64 {
	var val float64
	for i := 0; i < n; i++ {
		val = s.Next()
	}
	return val
}
