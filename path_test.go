package fat12

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizePath(t *testing.T) {
	cases := []struct {
		path   string
		tokens []string
	}{
		{"/", []string{""}},
		{"/usr", []string{"usr"}},
		{"/usr/ysa", []string{"usr", "ysa"}},
		{"/usr//ysa/", []string{"usr", "ysa"}},
		{"///", []string{""}},
	}

	for _, c := range cases {
		tokens, err := tokenizePath(c.path)
		require.NoError(t, err, "path %q", c.path)
		require.Equal(t, c.tokens, tokens, "path %q", c.path)
	}
}

func TestTokenizeRejectsRelativePaths(t *testing.T) {
	for _, path := range []string{"", "usr", "usr/ysa", "./usr", "../usr"} {
		_, err := tokenizePath(path)
		require.ErrorIs(t, err, ErrBadPath, "path %q", path)
	}
}

func TestResolveDirRoot(t *testing.T) {
	volume := newTestVolume(t, 1.0)

	dir, err := volume.ResolveDir("/")
	require.NoError(t, err)
	require.True(t, dir.IsRoot())
}

func TestResolveDirDescends(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	require.NoError(t, volume.Mkdir("/a"))
	require.NoError(t, volume.Mkdir("/a/b"))
	require.NoError(t, volume.Mkdir("/a/b/c"))

	dir, err := volume.ResolveDir("/a/b/c")
	require.NoError(t, err)
	require.False(t, dir.IsRoot())

	_, err = volume.ResolveDir("/a/x/c")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveDirIgnoresFilesForIntermediates(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	hostPath := writeHostFile(t, []byte("plain file"), 0o644)
	require.NoError(t, volume.WriteFile("/f", hostPath))

	// A file never satisfies a directory component.
	_, err := volume.ResolveDir("/f")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = volume.ResolveDir("/f/sub")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveParentAndName(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	require.NoError(t, volume.Mkdir("/usr"))

	parent, name, err := volume.ResolveParentAndName("/usr/file1")
	require.NoError(t, err)
	require.False(t, parent.IsRoot())
	require.Equal(t, "file1", name)

	parent, name, err = volume.ResolveParentAndName("/file2")
	require.NoError(t, err)
	require.True(t, parent.IsRoot())
	require.Equal(t, "file2", name)
}

func TestResolveParentAndNameRejectsRoot(t *testing.T) {
	volume := newTestVolume(t, 1.0)
	_, _, err := volume.ResolveParentAndName("/")
	require.ErrorIs(t, err, ErrBadPath)
}
