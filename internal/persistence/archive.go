package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/crownlands/internal/economy"
)

// Archive is the on-disk export format for a run's snapshot history.
type Archive struct {
	RunID     string                    `json:"runId"`
	LastDay   int                       `json:"lastDay"`
	Snapshots []economy.EconomySnapshot `json:"snapshots"`
}

// WriteArchive compresses the snapshot history to a zstd-framed JSON file.
func WriteArchive(path, runID string, snaps []economy.EconomySnapshot) error {
	lastDay := 0
	if len(snaps) > 0 {
		lastDay = snaps[len(snaps)-1].Day
	}
	arc := Archive{RunID: runID, LastDay: lastDay, Snapshots: snaps}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}

	if err := json.NewEncoder(zw).Encode(&arc); err != nil {
		zw.Close()
		return fmt.Errorf("encode archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}
	return f.Sync()
}

// ReadArchive loads a previously written snapshot archive.
func ReadArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var arc Archive
	if err := json.NewDecoder(zr).Decode(&arc); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return &arc, nil
}
