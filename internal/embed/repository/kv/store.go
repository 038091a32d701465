// Package kv is the embedded backend: outputs and scan progress in a local
// key-value database, for running without a database server.
package kv

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tmdb "github.com/cosmos/cosmos-db"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	jsoniter "github.com/json-iterator/go"
	"github.com/lightningnetwork/lnd/clock"
	"go.uber.org/zap"
)

const (
	dbName = "opreturn"

	outputKeyPrefix      = "o:"
	heightIndexKeyPrefix = "h:"
	scanKeyPrefix        = "s:"
	checkpointKeyPrefix  = "c:"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store on cosmos-db. Writes are serialised by a
// mutex; the database is owned by one process.
type Store struct {
	mu     sync.RWMutex
	db     tmdb.DB
	clock  clock.Clock
	logger *zap.Logger
}

// Open opens or creates the database under dir with the given backend
// (goleveldb, memdb, ...).
func Open(backend, dir string, clk clock.Clock, logger *zap.Logger) (*Store, error) {
	db, err := tmdb.NewDB(dbName, tmdb.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("open %s database in %s: %w", backend, dir, err)
	}
	return New(db, clk, logger), nil
}

// New wraps an open database.
func New(db tmdb.DB, clk clock.Clock, logger *zap.Logger) *Store {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, clock: clk, logger: logger}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func heightKey(h uint64) string {
	return fmt.Sprintf("%020d", h)
}

func outputKey(txid string, vout uint32) []byte {
	return []byte(outputKeyPrefix + txid + ":" + strconv.FormatUint(uint64(vout), 10))
}

func heightIndexKey(h uint64, txid string, vout uint32) []byte {
	return []byte(heightIndexKeyPrefix + heightKey(h) + ":" + txid + ":" + strconv.FormatUint(uint64(vout), 10))
}

func scanKey(h uint64) []byte {
	return []byte(scanKeyPrefix + heightKey(h))
}

func checkpointKey(dir model.Direction) []byte {
	return []byte(checkpointKeyPrefix + string(dir))
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// iterate calls fn for each key in [start, end) until fn returns false.
func (s *Store) iterate(start, end []byte, reverse bool, fn func(key, value []byte) (bool, error)) error {
	var (
		it  tmdb.Iterator
		err error
	)
	if reverse {
		it, err = s.db.ReverseIterator(start, end)
	} else {
		it, err = s.db.Iterator(start, end)
	}
	if err != nil {
		return fmt.Errorf("open iterator: %w", err)
	}
	defer func() {
		if closeErr := it.Close(); closeErr != nil {
			s.logger.Warn("close iterator", zap.Error(closeErr))
		}
	}()

	for ; it.Valid(); it.Next() {
		more, err := fn(it.Key(), it.Value())
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return it.Error()
}

func (s *Store) iteratePrefix(prefix string, fn func(key, value []byte) (bool, error)) error {
	p := []byte(prefix)
	return s.iterate(p, prefixEnd(p), false, fn)
}

func parseIndexKey(key []byte) (height uint64, txid string, vout uint32, err error) {
	parts := strings.Split(strings.TrimPrefix(string(key), heightIndexKeyPrefix), ":")
	if len(parts) != 3 {
		return 0, "", 0, fmt.Errorf("malformed index key %q", key)
	}
	if height, err = strconv.ParseUint(parts[0], 10, 64); err != nil {
		return 0, "", 0, fmt.Errorf("index key height: %w", err)
	}
	v, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return 0, "", 0, fmt.Errorf("index key vout: %w", err)
	}
	return height, parts[1], uint32(v), nil
}
