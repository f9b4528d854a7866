package fat12

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkVisitsWholeTree(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	hostPath := writeHostFile(t, []byte("leaf"), 0o644)

	require.NoError(t, volume.Mkdir("/usr"))
	require.NoError(t, volume.Mkdir("/usr/ysa"))
	require.NoError(t, volume.WriteFile("/usr/ysa/file1", hostPath))
	require.NoError(t, volume.Mkdir("/bin"))

	visited := []string{}
	err := volume.Walk(func(path string, entry Dirent) error {
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t,
		[]string{"/usr", "/usr/ysa", "/usr/ysa/file1", "/bin"},
		visited)
}

func TestDumpe2fsReportsGeometryAndCounts(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	hostPath := writeHostFile(t, []byte("some data"), 0o644)

	require.NoError(t, volume.Mkdir("/usr"))
	require.NoError(t, volume.Mkdir("/usr/ysa"))
	require.NoError(t, volume.WriteFile("/f", hostPath))

	var out bytes.Buffer
	require.NoError(t, volume.Dumpe2fs(&out))
	report := out.String()

	require.Contains(t, report, "OEM Name: GTUFAT12")
	require.Contains(t, report, "Bytes per Sector: 512")
	require.Contains(t, report, "Block size: 1024 bytes")
	require.Contains(t, report, "FAT1 start: 512")
	require.Contains(t, report, "Root directory start: 9728")
	require.Contains(t, report, "Data area start: 16896")
	require.Contains(t, report, "Directories: 2")
	require.Contains(t, report, "Files: 1")

	// Three entries own one cluster each.
	require.Contains(t, report, "Used clusters: 3")
	require.Contains(t, report, "/usr/ysa")

	lines := strings.Split(report, "\n")
	require.Greater(t, len(lines), 10)
}

func TestDumpe2fsFreshImage(t *testing.T) {
	volume := newTestVolume(t, 0.5)

	var out bytes.Buffer
	require.NoError(t, volume.Dumpe2fs(&out))

	require.Contains(t, out.String(), "Directories: 0")
	require.Contains(t, out.String(), "Files: 0")
	require.Contains(t, out.String(), "Used clusters: 0")
	require.Contains(t, out.String(), "Free clusters: 3070")
}
