//go:build linux

package shm

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestObjectPath(t *testing.T) {
	p, err := ObjectPath("", "/shared_mem_example")
	require.NoError(t, err)
	assert.Equal(t, "/dev/shm/shared_mem_example", p)

	p, err = ObjectPath("/tmp/x", "seg")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x/seg", p)

	for _, bad := range []string{"", "/", "/a/b", "..", "/."} {
		_, err := ObjectPath("", bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestMapRegion_CreateOpenUnlink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	creator, err := MapRegion(ctx, MapOptions{Name: "/region", Dir: dir, Size: 4096, Create: true})
	require.NoError(t, err)
	assert.Len(t, creator.Addr, 4096)
	fi, err := os.Stat(creator.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), fi.Size())
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	copy(creator.Addr, "10 2\n")

	opener, err := MapRegion(ctx, MapOptions{Name: "/region", Dir: dir, Size: 4096})
	require.NoError(t, err)
	assert.Equal(t, "10 2\n", string(opener.Addr[:5]))

	copy(opener.Addr, "5.00\n")
	assert.Equal(t, "5.00\n", string(creator.Addr[:5]))

	require.NoError(t, UnmapRegion(ctx, opener))
	assert.Nil(t, opener.Addr)
	require.NoError(t, UnmapRegion(ctx, opener))

	require.NoError(t, UnmapRegion(ctx, creator))
	require.NoError(t, UnlinkRegion(ctx, creator))

	_, err = MapRegion(ctx, MapOptions{Name: "/region", Dir: dir, Size: 4096})
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageOpen, se.Stage)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestMapRegion_CreateZeroesStaleObject(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path, err := ObjectPath(dir, "stale")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("leftover from a crashed run"), 0600))

	r, err := MapRegion(ctx, MapOptions{Name: "stale", Dir: dir, Size: 64, Create: true})
	require.NoError(t, err)
	defer func() {
		_ = UnmapRegion(ctx, r)
		_ = UnlinkRegion(ctx, r)
	}()
	assert.Equal(t, make([]byte, 64), r.Addr)
}

func TestMapRegion_OpenTooSmall(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path, err := ObjectPath(dir, "small")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0600))

	_, err = MapRegion(ctx, MapOptions{Name: "small", Dir: dir, Size: 4096})
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageStat, se.Stage)
}

func TestMapRegion_InvalidName(t *testing.T) {
	_, err := MapRegion(context.Background(), MapOptions{Name: "/a/b", Dir: t.TempDir(), Size: 16, Create: true})
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageName, se.Stage)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCanCreateIn(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, canCreateIn(dir, 1))
	assert.False(t, canCreateIn(dir, math.MaxUint64))
	// unreadable directories defer to open(2)
	assert.True(t, canCreateIn("/does/not/exist", math.MaxUint64))

	_, err := MapRegion(context.Background(), MapOptions{Name: "huge", Dir: dir, Size: math.MaxInt, Create: true})
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSpace, se.Stage)
	assert.ErrorIs(t, err, unix.ENOSPC)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "mmap", StageMmap.String())
	assert.Equal(t, "unknown", Stage(99).String())
	e := &StageError{Stage: StageTruncate, Err: unix.EPERM}
	assert.Equal(t, "ftruncate: operation not permitted", e.Error())
}
