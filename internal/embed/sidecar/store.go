// Package sidecar writes per-output files next to the database rows: a JSON
// metadata document plus the payload in raw, decoded and typed form.
package sidecar

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/extract"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata is the JSON document written for every output.
type Metadata struct {
	BlockNumber   uint64   `json:"block_number"`
	BlockHash     string   `json:"block_hash"`
	BlockTime     string   `json:"block_time"`
	MinedBy       string   `json:"mined_by"`
	TransactionID string   `json:"transaction_id"`
	VoutIndex     uint32   `json:"vout_index"`
	DataSize      int      `json:"data_size"`
	FileType      string   `json:"file_type"`
	PayloadType   string   `json:"payload_type"`
	MIMEType      string   `json:"mime_type"`
	RawDataHex    string   `json:"raw_data_hex"`
	FeeSats       *int64   `json:"transaction_fee_sats"`
	SizeVBytes    int64    `json:"transaction_size_vbytes"`
	FeeRate       *float64 `json:"fee_rate_sats_per_vbyte"`
	CostPerByte   *float64 `json:"cost_per_byte_of_data"`
	Inputs        int      `json:"tx_inputs"`
	Outputs       int      `json:"tx_outputs"`
	DiscoveredAt  string   `json:"discovered_at"`
}

// Store lays files out as <root>/block_<height>/tx_<txid>_<vout>_*.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates root on fs if needed.
func NewStore(fs afero.Fs, root string) (*Store, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create sidecar root %s: %w", root, err)
	}
	return &Store{fs: fs, root: root}, nil
}

// NewOSStore stores files on the local disk.
func NewOSStore(root string) (*Store, error) {
	return NewStore(afero.NewOsFs(), root)
}

func (s *Store) blockDir(height uint64) string {
	return filepath.Join(s.root, fmt.Sprintf("block_%d", height))
}

func (s *Store) prefix(height uint64, txid string, vout uint32) string {
	return filepath.Join(s.blockDir(height), fmt.Sprintf("tx_%s_%d", txid, vout))
}

// MetadataPath returns where the metadata document of an output lives.
func (s *Store) MetadataPath(height uint64, txid string, vout uint32) string {
	return s.prefix(height, txid, vout) + "_metadata.json"
}

// Exists reports whether the metadata document of an output is present. The
// document is written last, so its presence means the file set is complete.
func (s *Store) Exists(height uint64, txid string, vout uint32) (bool, error) {
	return afero.Exists(s.fs, s.MetadataPath(height, txid, vout))
}

// Write stores the file set for out. Each file is written atomically.
// Executables get metadata only.
func (s *Store) Write(out model.EmbeddedOutput) error {
	if err := s.fs.MkdirAll(s.blockDir(out.BlockHeight), 0o755); err != nil {
		return fmt.Errorf("create block dir: %w", err)
	}
	prefix := s.prefix(out.BlockHeight, out.TxID, out.Vout)

	if out.PayloadType != model.PayloadExecutable {
		if err := s.writeAtomic(prefix+"_raw.bin", out.Payload); err != nil {
			return err
		}

		c := extract.Classify(out.Payload)
		if out.PayloadType == model.PayloadText && c.Text != "" {
			if err := s.writeAtomic(prefix+"_decoded.txt", []byte(c.Text)); err != nil {
				return err
			}
		}
		if out.Extension != "" && out.PayloadType != model.PayloadText {
			typed := out.Payload
			if c.Decoded != nil {
				typed = c.Decoded
			}
			if err := s.writeAtomic(prefix+"."+out.Extension, typed); err != nil {
				return err
			}
		}
	}

	doc, err := json.MarshalIndent(metadataFor(out), "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return s.writeAtomic(prefix+"_metadata.json", doc)
}

// Read loads the metadata document of an output.
func (s *Store) Read(height uint64, txid string, vout uint32) (Metadata, error) {
	raw, err := afero.ReadFile(s.fs, s.MetadataPath(height, txid, vout))
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// DeleteHeight removes every file of a block. A missing directory is not an error.
func (s *Store) DeleteHeight(height uint64) error {
	if err := s.fs.RemoveAll(s.blockDir(height)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete block dir %d: %w", height, err)
	}
	return nil
}

func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(name), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := s.fs.Rename(tmpName, name); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func metadataFor(out model.EmbeddedOutput) Metadata {
	fileType := string(out.PayloadType)
	if out.Extension != "" && out.PayloadType != model.PayloadText {
		fileType = out.Extension
	}
	return Metadata{
		BlockNumber:   out.BlockHeight,
		BlockHash:     out.BlockHash,
		BlockTime:     out.BlockTime.UTC().Format(time.RFC3339),
		MinedBy:       out.MinedBy,
		TransactionID: out.TxID,
		VoutIndex:     out.Vout,
		DataSize:      out.PayloadSize,
		FileType:      fileType,
		PayloadType:   string(out.PayloadType),
		MIMEType:      out.MIMEType,
		RawDataHex:    hex.EncodeToString(out.Payload),
		FeeSats:       out.Fee,
		SizeVBytes:    out.TxSize,
		FeeRate:       out.FeeRate,
		CostPerByte:   out.CostPerByte,
		Inputs:        out.InputCount,
		Outputs:       out.OutputCount,
		DiscoveredAt:  out.DiscoveredAt.UTC().Format(time.RFC3339),
	}
}
