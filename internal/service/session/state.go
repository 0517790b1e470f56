package session

// State is a step of one detection attempt, from dispatch to the end of its control.
type State int

const (
	StateIdle State = iota
	StateMatched
	StateNoticeSent
	StateArmed
	StateConsumed
	StateExpired
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateMatched:    "matched",
	StateNoticeSent: "notice_sent",
	StateArmed:      "armed",
	StateConsumed:   "consumed",
	StateExpired:    "expired",
	StateAborted:    "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateConsumed || s == StateExpired || s == StateAborted
}
