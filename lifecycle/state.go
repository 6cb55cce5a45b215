package lifecycle

// State is the runtime lifecycle state machine. States are ordered; the
// adapter only ever moves the state forward along this order.
type State int

const (
	Uninitialized State = iota
	Started
	Resumed
	Paused
	Stopped
	Destroyed
)

var stateNames = [...]string{
	Uninitialized: "uninitialized",
	Started:       "started",
	Resumed:       "resumed",
	Paused:        "paused",
	Stopped:       "stopped",
	Destroyed:     "destroyed",
}

func (s State) String() string {
	if s < Uninitialized || s > Destroyed {
		return "unknown"
	}
	return stateNames[s]
}

// HostEvent is a container lifecycle signal delivered by the host. Under
// normal operation events arrive in declaration order, but the adapter
// tolerates skips and repeats.
type HostEvent int

const (
	EventStart HostEvent = iota
	EventResume
	EventPause
	EventStop
	EventDestroy
)

var eventNames = [...]string{
	EventStart:   "start",
	EventResume:  "resume",
	EventPause:   "pause",
	EventStop:    "stop",
	EventDestroy: "destroy",
}

func (e HostEvent) String() string {
	if e < EventStart || e > EventDestroy {
		return "unknown"
	}
	return eventNames[e]
}

// target returns the state this event drives toward.
func (e HostEvent) target() State {
	switch e {
	case EventStart:
		return Started
	case EventResume:
		return Resumed
	case EventPause:
		return Paused
	case EventStop:
		return Stopped
	case EventDestroy:
		return Destroyed
	}
	return Uninitialized
}
