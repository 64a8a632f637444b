package pipeline

// Lane identifies an independent logical search context. The two lanes keep
// separate in-flight state, pagination tokens and generation counters.
type Lane int

const (
	// LaneNearby is the empty-query "restaurants around me" search.
	LaneNearby Lane = iota
	// LaneText is the free-text search.
	LaneText

	numLanes = 2
)

func (l Lane) String() string {
	switch l {
	case LaneNearby:
		return "nearby"
	case LaneText:
		return "text"
	default:
		return "unknown"
	}
}

// State is the coarse pipeline state published with every update.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status describes where one search cycle stands. Within a cycle the state
// only moves forward: idle -> loading -> succeeded or failed. A new cycle
// starts the sequence over.
type Status struct {
	State State
	Lane  Lane
	// Count is the number of visible places after a successful cycle.
	Count int
	// FromCache marks a success served from the cache after a network
	// failure.
	FromCache bool
	// Err carries the failure for StateFailed.
	Err error
}
