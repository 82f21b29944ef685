package dsp

// LinearSmoother ramps a parameter linearly toward a target over a
// configured time constant, preventing clicks when synthesis targets
// change at phoneme boundaries. Typical constants are 5-50 ms.
type LinearSmoother struct {
	current    float64
	target     float64
	seconds    float64
	sampleRate float64
	countdown  int
}

// NewLinearSmoother returns a smoother with the given time constant.
func NewLinearSmoother(seconds, sampleRate float64) *LinearSmoother {
	s := &LinearSmoother{}
	s.SetTimeConstant(seconds, sampleRate)
	return s
}

// SetTimeConstant sets the ramp duration used by subsequent SetTarget
// calls. Non-positive values snap targets immediately.
func (s *LinearSmoother) SetTimeConstant(seconds, sampleRate float64) {
	s.seconds = seconds
	s.sampleRate = sampleRate
}

// SetTarget begins a ramp from the current value to v.
func (s *LinearSmoother) SetTarget(v float64) {
	s.target = v
	n := int(s.seconds * s.sampleRate)
	if n < 0 {
		n = 0
	}
	s.countdown = n
}

// SetTargetImmediate jumps straight to v with no ramp.
func (s *LinearSmoother) SetTargetImmediate(v float64) {
	s.target = v
	s.current = v
	s.countdown = 0
}

// Next advances the smoother one sample and returns the current value.
func (s *LinearSmoother) Next() float64 {
	if s.countdown <= 0 {
		s.current = s.target
		return s.target
	}
	s.current += (s.target - s.current) / float64(s.countdown)
	s.countdown--
	return s.current
}

// Value returns the current value without advancing.
func (s *LinearSmoother) Value() float64 {
	if s.countdown <= 0 {
		return s.target
	}
	return s.current
}

// IsSmoothing reports whether a ramp is still in progress.
func (s *LinearSmoother) IsSmoothing() bool {
	return s.countdown > 0
}

// Reset snaps the current value to the target and stops any ramp.
func (s *LinearSmoother) Reset() {
	s.current = s.target
	s.countdown = 0
}
