package model

import "time"

// PayloadType is the best-effort classification of an embedded payload.
type PayloadType string

const (
	PayloadText       PayloadType = "text"
	PayloadImage      PayloadType = "image"
	PayloadBinary     PayloadType = "binary"
	PayloadExecutable PayloadType = "executable"
	PayloadArchive    PayloadType = "archive"
	PayloadVideo      PayloadType = "video"
	PayloadUnknown    PayloadType = "unknown"
)

// Valid reports whether t is one of the known payload types.
func (t PayloadType) Valid() bool {
	switch t {
	case PayloadText, PayloadImage, PayloadBinary, PayloadExecutable, PayloadArchive, PayloadVideo, PayloadUnknown:
		return true
	default:
		return false
	}
}

// EmbeddedOutput is one qualifying null-data output. It is keyed by
// (TxID, Vout) and created once; only a reset of its block removes it.
type EmbeddedOutput struct {
	TxID         string `validate:"required,len=64,hexadecimal"`
	Vout         uint32
	BlockHeight  uint64
	BlockHash    string
	BlockTime    time.Time
	MinedBy      string
	Payload      []byte      `validate:"required"`
	PayloadSize  int         `validate:"gt=0"`
	PayloadType  PayloadType `validate:"required,oneof=text image binary executable archive video unknown"`
	MIMEType     string
	Extension    string
	Fee          *int64 `validate:"omitnil,gte=0"`
	TxSize       int64  `validate:"gte=0"`
	FeeRate      *float64
	CostPerByte  *float64
	InputCount   int       `validate:"gte=0"`
	OutputCount  int       `validate:"gt=0"`
	DiscoveredAt time.Time `validate:"required"`
}

// Outcome reports what a persist call did.
type Outcome int

const (
	// OutcomePersisted means a new record was written.
	OutcomePersisted Outcome = iota
	// OutcomeDuplicate means the record already existed; nothing changed.
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomePersisted:
		return "persisted"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}
