package engine

// Phase is the engine's collision state.
type Phase int

const (
	Running Phase = iota
	Halted
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Latch holds the collision state. Halt is the only way into Halted and
// Reset the only way out.
type Latch struct {
	phase Phase
}

func (l *Latch) Halt()        { l.phase = Halted }
func (l *Latch) Reset()       { l.phase = Running }
func (l *Latch) Phase() Phase { return l.phase }
func (l *Latch) Halted() bool { return l.phase == Halted }
