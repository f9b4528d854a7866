package fat12

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eminakgun/fs-fat12/profiles"
)

// newTestVolume formats a fresh in-memory image bound to a temp path.
func newTestVolume(t *testing.T, blockSizeKB float64) *Volume {
	t.Helper()

	profile, err := profiles.ForBlockSizeKB(blockSizeKB)
	require.NoError(t, err, "profile lookup failed")

	path := filepath.Join(t.TempDir(), "test.img")
	volume, err := Format(path, profile)
	require.NoError(t, err, "formatting the image failed")
	return volume
}

// withFixedClock pins entry timestamps for the duration of a test.
func withFixedClock(t *testing.T, fixed time.Time) {
	t.Helper()
	previous := nowFunc
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = previous })
}

// writeHostFile drops a file with the given content and permission bits
// into a temp directory.
func writeHostFile(t *testing.T, content []byte, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.dat")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

// snapshot copies the volume's buffer for before/after comparisons.
func snapshot(v *Volume) []byte {
	data := make([]byte, len(v.buffer))
	copy(data, v.buffer)
	return data
}
