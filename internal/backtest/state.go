package backtest

// State tracks the engine lifecycle
type State int

// Engine lifecycle states
const (
	StateConstructed State = iota
	StateRun
	StateSummarized
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateRun:
		return "run"
	case StateSummarized:
		return "summarized"
	default:
		return "unknown"
	}
}
