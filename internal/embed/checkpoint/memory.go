package checkpoint

import (
	"context"
	"sync"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/scylladb/go-set/u64set"
)

// Memory is a process-local Store. Progress is lost on exit.
type Memory struct {
	mu          sync.RWMutex
	clock       clock.Clock
	checkpoints map[model.Direction]model.Checkpoint
	scanned     *u64set.Set
	scans       map[uint64]model.BlockScan
}

// NewMemory returns an empty in-memory Store.
func NewMemory(clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Memory{
		clock:       clk,
		checkpoints: make(map[model.Direction]model.Checkpoint),
		scanned:     u64set.New(),
		scans:       make(map[uint64]model.BlockScan),
	}
}

func (m *Memory) Checkpoint(_ context.Context, dir model.Direction) (model.Checkpoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.checkpoints[dir]
	return cp, ok, nil
}

func (m *Memory) Advance(_ context.Context, dir model.Direction, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, ok := m.checkpoints[dir]
	if err := CheckAdvance(dir, cp.Height, ok, height); err != nil {
		return err
	}
	m.checkpoints[dir] = model.Checkpoint{Direction: dir, Height: height, UpdatedAt: m.clock.Now().UTC()}
	return nil
}

func (m *Memory) MarkScanned(_ context.Context, scan model.BlockScan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanned.Add(scan.Height)
	m.scans[scan.Height] = scan
	return nil
}

func (m *Memory) Scanned(_ context.Context, height uint64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanned.Has(height), nil
}

func (m *Memory) Reset(_ context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanned.Remove(height)
	delete(m.scans, height)
	return nil
}

func (m *Memory) ScannedBounds(_ context.Context) (uint64, uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.scanned.IsEmpty() {
		return 0, 0, false, nil
	}
	var lo, hi uint64
	first := true
	m.scanned.Each(func(h uint64) bool {
		if first || h < lo {
			lo = h
		}
		if first || h > hi {
			hi = h
		}
		first = false
		return true
	})
	return lo, hi, true, nil
}

// Scan returns the marker stored for height.
func (m *Memory) Scan(height uint64) (model.BlockScan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scans[height]
	return s, ok
}
