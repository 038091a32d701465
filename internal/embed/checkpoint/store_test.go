package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAdvance(t *testing.T) {
	tests := []struct {
		name       string
		dir        model.Direction
		current    uint64
		hasCurrent bool
		next       uint64
		wantGap    bool
		wantErr    bool
	}{
		{name: "first forward advance", dir: model.Forward, next: 900000},
		{name: "first backward advance", dir: model.Backward, next: 5},
		{name: "forward adjacent", dir: model.Forward, current: 10, hasCurrent: true, next: 11},
		{name: "forward skip", dir: model.Forward, current: 10, hasCurrent: true, next: 12, wantGap: true, wantErr: true},
		{name: "forward repeat", dir: model.Forward, current: 10, hasCurrent: true, next: 10, wantGap: true, wantErr: true},
		{name: "backward adjacent", dir: model.Backward, current: 10, hasCurrent: true, next: 9},
		{name: "backward wrong way", dir: model.Backward, current: 10, hasCurrent: true, next: 11, wantGap: true, wantErr: true},
		{name: "backward below genesis", dir: model.Backward, current: 0, hasCurrent: true, next: 0, wantGap: true, wantErr: true},
		{name: "unknown direction", dir: model.Direction("sideways"), hasCurrent: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAdvance(tt.dir, tt.current, tt.hasCurrent, tt.next)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckAdvance() error = %v, wantErr %v", err, tt.wantErr)
			}
			var gap *GapError
			if got := errors.As(err, &gap); got != tt.wantGap {
				t.Fatalf("errors.As(GapError) = %v, want %v", got, tt.wantGap)
			}
			if tt.wantGap {
				assert.Equal(t, tt.current, gap.Current)
				assert.Equal(t, tt.next, gap.Attempted)
			}
		})
	}
}

func TestMemory_AdvanceGapLeavesState(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	clk := clock.NewTestClock(start)
	store := NewMemory(clk)

	_, ok, err := store.Checkpoint(ctx, model.Forward)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Advance(ctx, model.Forward, 100))
	clk.SetTime(start.Add(time.Minute))
	require.NoError(t, store.Advance(ctx, model.Forward, 101))

	err = store.Advance(ctx, model.Forward, 103)
	var gap *GapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, model.Forward, gap.Direction)

	cp, ok, err := store.Checkpoint(ctx, model.Forward)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(101), cp.Height)
	assert.Equal(t, start.Add(time.Minute), cp.UpdatedAt)

	_, ok, err = store.Checkpoint(ctx, model.Backward)
	require.NoError(t, err)
	assert.False(t, ok, "directions are independent")
}

func TestMemory_MarkersAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(nil)

	_, _, ok, err := store.ScannedBounds(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	for _, h := range []uint64{42, 7, 19} {
		require.NoError(t, store.MarkScanned(ctx, model.BlockScan{Height: h, Found: 1}))
	}
	require.NoError(t, store.Advance(ctx, model.Forward, 42))

	lo, hi, ok, err := store.ScannedBounds(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), lo)
	assert.Equal(t, uint64(42), hi)

	require.NoError(t, store.Reset(ctx, 42))
	scanned, err := store.Scanned(ctx, 42)
	require.NoError(t, err)
	assert.False(t, scanned)
	_, ok = store.Scan(42)
	assert.False(t, ok)

	cp, ok, err := store.Checkpoint(ctx, model.Forward)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), cp.Height, "reset never rewinds a checkpoint")
}
