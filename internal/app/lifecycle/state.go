package lifecycle

// State is the lifecycle position of a Command.
type State int

// States in the order a successful run passes through them. Failed replaces
// whichever state was current when an error occurred.
const (
	StateInit State = iota
	StateEnv
	StateOptions
	StateProperties
	StateLogging
	StateValidate
	StatePrepare
	StateInitialize
	StateExecute
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:       "init",
	StateEnv:        "env",
	StateOptions:    "options",
	StateProperties: "properties",
	StateLogging:    "logging",
	StateValidate:   "validate",
	StatePrepare:    "prepare",
	StateInitialize: "initialize",
	StateExecute:    "execute",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
