// Package snapshot persists a session: the world seed, the player pose, the
// destroyed walls and the accumulated playtime. Files are JSON inside a zstd
// frame. Loading validates everything before any of it is applied, so a bad
// file can never half-restore a session.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"backrooms/geom"
	"backrooms/world"
)

// FormatVersion bumps when the on-disk layout changes incompatibly.
const FormatVersion = 1

var ErrIncompatible = errors.New("snapshot: incompatible or corrupt file")

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	PlayerPos   geom.Vec3 `json:"player_pos"`
	PlayerYaw   float64   `json:"player_yaw"`
	PlayerPitch float64   `json:"player_pitch"`

	Destroyed []world.SegmentID `json:"destroyed"`

	PlaytimeSeconds float64 `json:"playtime_seconds"`
}

// Validate rejects snapshots that would put the engine in an impossible
// state.
func (s *Snapshot) Validate() error {
	if s.Version != FormatVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrIncompatible, s.Version, FormatVersion)
	}
	if !s.PlayerPos.IsFinite() || !finite(s.PlayerYaw) || !finite(s.PlayerPitch) {
		return fmt.Errorf("%w: non-finite player pose", ErrIncompatible)
	}
	if s.PlaytimeSeconds < 0 || !finite(s.PlaytimeSeconds) {
		return fmt.Errorf("%w: invalid playtime", ErrIncompatible)
	}
	for _, id := range s.Destroyed {
		if world.SegID(id.X1, id.Z1, id.X2, id.Z2) != id {
			return fmt.Errorf("%w: non-canonical segment id %s", ErrIncompatible, id)
		}
		h := id.X2 == id.X1+1 && id.Z2 == id.Z1
		v := id.X2 == id.X1 && id.Z2 == id.Z1+1
		if !h && !v {
			return fmt.Errorf("%w: segment %s is not a lattice edge", ErrIncompatible, id)
		}
	}
	return nil
}

// Write atomically saves the snapshot: a temp file in the same directory is
// renamed over the target only after a clean close.
func Write(path string, s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(s); err != nil {
		enc.Close()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("snapshot encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("snapshot flush: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot close: %w", err)
	}
	return os.Rename(tmp, path)
}

// Read loads and validates a snapshot.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	defer dec.Close()

	var s Snapshot
	jd := json.NewDecoder(dec)
	jd.DisallowUnknownFields()
	if err := jd.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
