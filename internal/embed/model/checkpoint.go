package model

import "time"

// Direction selects which scan checkpoint a run owns.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Checkpoint is the last height fully processed in a direction.
type Checkpoint struct {
	Direction Direction `db:"direction"`
	Height    uint64    `db:"height"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Stats summarises what has been scanned so far.
type Stats struct {
	BlocksScanned     uint64
	OutputsFound      uint64
	FirstHeight       uint64
	LastHeight        uint64
	TotalPayloadBytes uint64
	TotalFees         int64
}

// AvgPerBlock returns the mean number of records per scanned block.
func (s Stats) AvgPerBlock() float64 {
	if s.BlocksScanned == 0 {
		return 0
	}
	return float64(s.OutputsFound) / float64(s.BlocksScanned)
}
