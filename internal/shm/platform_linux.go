//go:build linux

package shm

import (
	"context"

	"golang.org/x/sys/unix"
)

// MapRegion maps or creates a shared memory region (Linux implementation).
//
// With Create set the object is created if missing, truncated to Size and
// zeroed. Without it the object must already exist and be at least Size bytes.
// The descriptor is closed once the mapping is established.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shmPath, err := ObjectPath(opts.Dir, opts.Name)
	if err != nil {
		return nil, &StageError{Stage: StageName, Err: err}
	}
	if opts.Size <= 0 {
		return nil, &StageError{Stage: StageName, Err: unix.EINVAL}
	}

	flags := unix.O_RDWR | unix.O_CLOEXEC | unix.O_NOFOLLOW
	if opts.Create {
		if err := checkFreeSpace(shmPath, uint64(opts.Size)); err != nil {
			return nil, &StageError{Stage: StageSpace, Err: err}
		}
		flags |= unix.O_CREAT
	}
	fd, err := unix.Open(shmPath, flags, 0600)
	if err != nil {
		return nil, &StageError{Stage: StageOpen, Err: err}
	}
	defer func() { _ = unix.Close(fd) }()

	if opts.Create {
		if err := unix.Ftruncate(fd, int64(opts.Size)); err != nil {
			return nil, &StageError{Stage: StageTruncate, Err: err}
		}
	} else {
		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			return nil, &StageError{Stage: StageStat, Err: err}
		}
		if st.Size < int64(opts.Size) {
			return nil, &StageError{Stage: StageStat, Err: unix.EINVAL}
		}
	}

	addr, err := unix.Mmap(fd, 0, opts.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &StageError{Stage: StageMmap, Err: err}
	}
	if opts.Create {
		clear(addr)
	}
	return &MappedRegion{
		Addr: addr,
		Name: opts.Name,
		Path: shmPath,
	}, nil
}

// UnmapRegion unmaps the shared memory region (Linux implementation).
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Addr == nil {
		return nil
	}
	if err := unix.Munmap(region.Addr); err != nil {
		return &StageError{Stage: StageMunmap, Err: err}
	}
	region.Addr = nil
	return nil
}

// UnlinkRegion removes the name so no later MapRegion can resolve it.
func UnlinkRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Path == "" {
		return nil
	}
	if err := unix.Unlink(region.Path); err != nil {
		return &StageError{Stage: StageUnlink, Err: err}
	}
	return nil
}
