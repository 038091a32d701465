package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransientFetch marks source failures worth retrying (timeouts, connection errors).
	ErrTransientFetch = errors.New("transient fetch error")
	// ErrMalformedData marks a single output that could not be parsed.
	ErrMalformedData = errors.New("malformed data")
	// ErrPersistence marks storage failures other than expected duplicates.
	ErrPersistence = errors.New("persistence error")
)

// FetchError is returned when a block could not be fetched after all retries.
type FetchError struct {
	Height   uint64
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch block %d failed after %d attempt(s): %v", e.Height, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransientFetch) match exhausted fetches.
func (e *FetchError) Is(target error) bool {
	return target == ErrTransientFetch
}

// MalformedDataError describes an output skipped during extraction.
type MalformedDataError struct {
	TxID string
	Vout uint32
	Err  error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed output %s:%d: %v", e.TxID, e.Vout, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

func (e *MalformedDataError) Is(target error) bool {
	return target == ErrMalformedData
}

// PersistenceError is fatal for the scan direction that hit it.
type PersistenceError struct {
	Height uint64
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s at height %d: %v", e.Op, e.Height, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Transient wraps err so callers can classify it as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransientFetch, err)
}
