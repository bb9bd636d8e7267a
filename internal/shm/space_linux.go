//go:build linux

package shm

import (
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

// canCreateIn reports whether the filesystem holding dir has size bytes free.
// A directory that cannot be inspected is not treated as full; the following
// open(2) reports the real problem.
func canCreateIn(dir string, size uint64) bool {
	stat, err := disk.Usage(dir)
	if err != nil {
		return true
	}
	return stat.Free >= size
}

func checkFreeSpace(shmPath string, size uint64) error {
	if !canCreateIn(filepath.Dir(shmPath), size) {
		return unix.ENOSPC
	}
	return nil
}
