package store

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/erazemk/zbirka/internal/model"
)

// SlotChecksum is the backup document key holding the content checksum.
const SlotChecksum = "gap_checksum"

var (
	// ErrInvalidSnapshot is returned when a backup document cannot be read.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrChecksumMismatch is returned when a backup document was altered
	// after export.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
)

// Export renders the archive as a backup document: one JSON object keyed by
// slot name, plus a checksum of the slot values.
func Export(a *model.Archive) ([]byte, error) {
	values, err := encodeState(a)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]json.RawMessage, len(values)+1)
	for key, value := range values {
		doc[key] = value
	}
	sum, err := checksum(doc)
	if err != nil {
		return nil, err
	}
	doc[SlotChecksum] = json.RawMessage(`"` + sum + `"`)

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Import replaces the stored archive with a backup document. The document is
// fully parsed and checked before any slot is written; on error nothing is
// changed. Absent slots take their defaults.
func Import(ctx context.Context, slots Slots, data []byte) (*model.Archive, error) {
	a, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, slots, a); err != nil {
		return nil, fmt.Errorf("importing snapshot: %w", err)
	}
	return a, nil
}

// ParseSnapshot decodes and verifies a backup document without storing it.
func ParseSnapshot(data []byte) (*model.Archive, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidSnapshot)
	}

	if rawSum, ok := doc[SlotChecksum]; ok {
		delete(doc, SlotChecksum)
		var want string
		if err := json.Unmarshal(rawSum, &want); err != nil {
			return nil, fmt.Errorf("%w: checksum: %v", ErrInvalidSnapshot, err)
		}
		got, err := checksum(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		if got != want {
			return nil, ErrChecksumMismatch
		}
	}

	raw := make(map[string][]byte, len(stateSlots))
	for _, key := range stateSlots {
		if value, ok := doc[key]; ok {
			raw[key] = value
		}
	}
	a, err := decodeState(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return a, nil
}

// checksum hashes the state slots of a document with BLAKE2b-256. Keys are
// taken in sorted order and values in compact form, so reformatting the
// document does not change the sum.
func checksum(doc map[string]json.RawMessage) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("creating hash: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		if slices.Contains(stateSlots, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		buf.Reset()
		if err := json.Compact(&buf, doc[key]); err != nil {
			return "", fmt.Errorf("compacting %s: %w", key, err)
		}
		h.Write([]byte(key))
		h.Write([]byte{0})
		h.Write(buf.Bytes())
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
