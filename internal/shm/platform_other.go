//go:build !linux

package shm

import (
	"context"
	"errors"
)

// ErrUnsupported is returned on platforms without a /dev/shm backed shm_open.
var ErrUnsupported = errors.New("shared memory segments are only supported on linux")

func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	return nil, &StageError{Stage: StageOpen, Err: ErrUnsupported}
}

func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	return nil
}

func UnlinkRegion(ctx context.Context, region *MappedRegion) error {
	return nil
}
