package sim

type State int

const (
	// Idle has no ticking loop. A working set may linger after Stop so the
	// next Start can keep positions.
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}
