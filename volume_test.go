package fat12

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistenceRoundTrip(t *testing.T) {
	volume := newTestVolume(t, 1.0)

	content := []byte("persisted across a flush and reload")
	hostPath := writeHostFile(t, content, 0o644)

	require.NoError(t, volume.Mkdir("/usr"))
	require.NoError(t, volume.Mkdir("/usr/ysa"))
	require.NoError(t, volume.WriteFile("/usr/ysa/file1", hostPath))
	require.NoError(t, volume.Flush())

	reloaded, err := Load(volume.path)
	require.NoError(t, err)

	entries, err := reloaded.List("/usr/ysa")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "file1", entries[2].Name)

	outPath := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, reloaded.ReadFile("/usr/ysa/file1", outPath))
	exported, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, content, exported)
}

func TestFlushMirrorsFAT(t *testing.T) {
	volume := newTestVolume(t, 1.0)

	require.NoError(t, volume.Mkdir("/usr"))
	require.NoError(t, volume.Mkdir("/usr/ysa"))
	require.NoError(t, volume.Flush())

	boot := volume.Boot()
	fat1 := volume.buffer[boot.FAT1Start:boot.FAT2Start]
	fat2 := volume.buffer[boot.FAT2Start:boot.RootDirStart]
	require.True(t, bytes.Equal(fat1, fat2),
		"FAT copies must be byte-identical after flush")
}

func TestFlushPreservesImageOnRename(t *testing.T) {
	volume := newTestVolume(t, 0.5)
	require.NoError(t, volume.Flush())

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(volume.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := os.Stat(volume.path)
	require.NoError(t, err)
	require.EqualValues(t, len(volume.buffer), info.Size())
}

func TestStreamAliasesBuffer(t *testing.T) {
	volume := newTestVolume(t, 0.5)

	stream := volume.Stream()
	head := make([]byte, BootSectorSize)
	_, err := stream.Read(head)
	require.NoError(t, err)
	require.Equal(t, volume.buffer[:BootSectorSize], head)
}

func TestRegionMap(t *testing.T) {
	volume := newTestVolume(t, 0.5)
	boot := volume.Boot()

	require.Equal(t, boot.DataAreaStart+2*boot.BlockSize, volume.clusterOffset(2))
	require.Len(t, volume.ClusterSlice(2), boot.BlockSize)

	require.True(t, volume.isRootRegion(boot.RootDirStart))
	require.True(t, volume.isRootRegion(boot.DataAreaStart-1))
	require.False(t, volume.isRootRegion(boot.DataAreaStart))
	require.False(t, volume.isRootRegion(boot.FAT1Start))
}

func TestEntryRefInRoot(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	require.NoError(t, volume.Mkdir("/usr"))
	require.NoError(t, volume.Mkdir("/usr/sub"))

	usr, err := volume.ResolveDir("/usr")
	require.NoError(t, err)
	require.True(t, usr.entry.InRoot())

	sub, err := volume.ResolveDir("/usr/sub")
	require.NoError(t, err)
	require.False(t, sub.entry.InRoot())
}
