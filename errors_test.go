package fat12

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithMessageKeepsSentinel(t *testing.T) {
	err := ErrNoSpace.WithMessage("no free cluster in the FAT")

	require.ErrorIs(t, err, ErrNoSpace)
	require.Contains(t, err.Error(), "No space left on device")
	require.Contains(t, err.Error(), "no free cluster in the FAT")
}

func TestWrapErrorKeepsSentinel(t *testing.T) {
	cause := fmt.Errorf("disk unplugged")
	err := ErrFlushFailed.WrapError(cause)

	require.ErrorIs(t, err, ErrFlushFailed)
	require.Contains(t, err.Error(), "disk unplugged")
}

func TestSentinelsAreDistinct(t *testing.T) {
	err := ErrNotFound.WithMessage("/usr/missing")
	require.False(t, errors.Is(err, ErrExists))
	require.False(t, errors.Is(err, ErrBadPath))
}
