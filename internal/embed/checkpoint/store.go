// Package checkpoint defines per-direction scan progress and the rules that
// keep it monotonic.
package checkpoint

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

type (
	// Store persists direction checkpoints and per-height completion markers.
	Store interface {
		// Checkpoint returns the last completed height of dir. ok is false when
		// dir has never advanced.
		Checkpoint(ctx context.Context, dir model.Direction) (cp model.Checkpoint, ok bool, err error)
		// Advance moves dir to height. It returns *GapError and leaves state
		// untouched when height is not adjacent to the current checkpoint.
		Advance(ctx context.Context, dir model.Direction, height uint64) error
		MarkScanned(ctx context.Context, scan model.BlockScan) error
		Scanned(ctx context.Context, height uint64) (bool, error)
		// Reset drops the completion marker of height. Checkpoints are kept.
		Reset(ctx context.Context, height uint64) error
		ScannedBounds(ctx context.Context) (lo, hi uint64, ok bool, err error)
	}
)

// GapError reports an advance that would skip or revisit heights.
type GapError struct {
	Direction model.Direction
	Current   uint64
	Attempted uint64
}

func (e *GapError) Error() string {
	return fmt.Sprintf("checkpoint gap: %s checkpoint at %d cannot advance to %d", e.Direction, e.Current, e.Attempted)
}

// CheckAdvance validates moving dir from current to next. hasCurrent is false
// for a direction that never advanced, in which case any height is accepted.
func CheckAdvance(dir model.Direction, current uint64, hasCurrent bool, next uint64) error {
	if !hasCurrent {
		return nil
	}
	switch dir {
	case model.Forward:
		if next == current+1 {
			return nil
		}
	case model.Backward:
		if current > 0 && next == current-1 {
			return nil
		}
	default:
		return fmt.Errorf("unknown direction %q", dir)
	}
	return &GapError{Direction: dir, Current: current, Attempted: next}
}
