package snapshot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backrooms/geom"
	"backrooms/world"
)

func sample() *Snapshot {
	return &Snapshot{
		Version:         FormatVersion,
		Seed:            424242,
		PlayerPos:       geom.V3(431.5, 55, -812.25),
		PlayerYaw:       1.25,
		PlayerPitch:     -0.1,
		Destroyed:       []world.SegmentID{world.SegID(3, 4, 4, 4), world.SegID(-2, 0, -2, 1)},
		PlaytimeSeconds: 1234.5,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.bks")
	in := sample()
	require.NoError(t, Write(path, in))

	out, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.bks"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncompatible)
}

func TestReadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bks")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot at all"), 0o644))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestValidateRejectsBadPose(t *testing.T) {
	s := sample()
	s.PlayerPos = geom.V3(math.NaN(), 0, 0)
	assert.ErrorIs(t, s.Validate(), ErrIncompatible)

	s = sample()
	s.PlayerYaw = math.Inf(1)
	assert.Error(t, s.Validate())

	s = sample()
	s.PlaytimeSeconds = -1
	assert.ErrorIs(t, s.Validate(), ErrIncompatible)
}

func TestValidateRejectsBadSegments(t *testing.T) {
	s := sample()
	s.Destroyed = []world.SegmentID{{X1: 5, Z1: 5, X2: 4, Z2: 5}} // reversed
	assert.ErrorIs(t, s.Validate(), ErrIncompatible)

	s = sample()
	s.Destroyed = []world.SegmentID{{X1: 0, Z1: 0, X2: 2, Z2: 0}} // not unit length
	assert.ErrorIs(t, s.Validate(), ErrIncompatible)
}

func TestWrongVersionRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.bks")
	s := sample()
	require.NoError(t, Write(path, s))

	s.Version = FormatVersion + 1
	err := Write(path, s)
	assert.ErrorIs(t, err, ErrIncompatible)

	// The earlier good file is untouched by the failed write.
	out, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, out.Version)
}

func TestWriteDoesNotLeaveTempOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "save.bks")
	s := sample()
	s.PlayerPitch = math.NaN()
	require.Error(t, Write(path, s))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestYawFiniteCheck(t *testing.T) {
	// Inf yaw passes the NaN check only if validation is sloppy; it must
	// not.
	s := sample()
	s.PlayerYaw = math.Inf(-1)
	assert.Error(t, s.Validate())
}
