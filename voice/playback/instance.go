package playback

import "time"

// State is the lifecycle stage of one playback instance. Every instance
// moves Starting → Playing → FadingOut → Finished; no transition may skip
// FadingOut on the way to Finished, which is what keeps amplitude continuous
// at both ends of every sound.
type State int

const (
	// StateStarting covers the mandatory fade-in window at instance start.
	StateStarting State = iota
	// StatePlaying is steady-state playback.
	StatePlaying
	// StateFadingOut is the amplitude ramp before the instance ends, entered
	// at the natural tail, on preemption, or on cancellation.
	StateFadingOut
	// StateFinished marks the instance reclaimable.
	StateFinished
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StatePlaying:
		return "playing"
	case StateFadingOut:
		return "fading-out"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// validTransitions is the per-state list of legal successors.
var validTransitions = map[State][]State{
	StateStarting:  {StatePlaying, StateFadingOut},
	StatePlaying:   {StateFadingOut},
	StateFadingOut: {StateFinished},
	StateFinished:  {},
}

// canTransition reports whether from → to is a legal lifecycle step.
func canTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// instance is the scheduler-owned runtime state for one sounding sprite.
// Only the scheduler mutates it, always under the scheduler mutex.
type instance struct {
	id        uint64
	handle    Handle
	state     State
	startedAt time.Time
	fadeInEnd time.Time
}

// live reports whether the instance occupies a playback slot for admission
// purposes. Fading instances are on their way out and no longer count
// against the ceiling.
func (in *instance) live() bool {
	return in.state == StateStarting || in.state == StatePlaying
}
