package scanner

import "github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"

// State is the position of a scan pipeline in its per-block cycle.
type State int

const (
	StateIdle State = iota
	StateFetchingBlock
	StateExtracting
	StatePersisting
	StateAdvancing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingBlock:
		return "fetching_block"
	case StateExtracting:
		return "extracting"
	case StatePersisting:
		return "persisting"
	case StateAdvancing:
		return "advancing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Mode names a pipeline. Forward and backward own a checkpoint; range does not.
type Mode string

const (
	ModeForward  Mode = "forward"
	ModeBackward Mode = "backward"
	ModeRange    Mode = "range"
)

func (m Mode) direction() (model.Direction, bool) {
	switch m {
	case ModeForward:
		return model.Forward, true
	case ModeBackward:
		return model.Backward, true
	default:
		return "", false
	}
}
