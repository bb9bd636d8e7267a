// Package shm contains the platform layer behind pkg/shm: named POSIX
// shared-memory objects, their sizing, and their mapping into the process.
package shm

import (
	"errors"
	"path/filepath"
	"strings"
)

// DefaultDir is where Linux backs shm_open(3) objects.
const DefaultDir = "/dev/shm"

// Stage identifies which system call of the region lifecycle failed.
type Stage int

const (
	StageName Stage = iota
	StageSpace
	StageOpen
	StageStat
	StageTruncate
	StageMmap
	StageMunmap
	StageUnlink
)

var stageNames = [...]string{
	StageName:     "name",
	StageSpace:    "space",
	StageOpen:     "open",
	StageStat:     "fstat",
	StageTruncate: "ftruncate",
	StageMmap:     "mmap",
	StageMunmap:   "munmap",
	StageUnlink:   "unlink",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// StageError carries the failing stage next to the system error, so callers
// can map it onto their own taxonomy.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Stage.String() + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// ErrInvalidName is returned for names shm_open(3) would reject.
var ErrInvalidName = errors.New("invalid shared memory name")

// MappedRegion represents a memory-mapped shared region.
type MappedRegion struct {
	Addr []byte
	Name string
	Path string
}

// MapOptions defines options for mapping shared memory.
type MapOptions struct {
	Name string
	// Dir overrides DefaultDir, mostly for tests.
	Dir    string
	Size   int
	Create bool
}

// ObjectPath resolves a POSIX shm name ("/foo" or "foo") to its backing file.
func ObjectPath(dir, name string) (string, error) {
	base := strings.TrimPrefix(name, "/")
	if base == "" || strings.ContainsRune(base, '/') || base == "." || base == ".." {
		return "", ErrInvalidName
	}
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, base), nil
}
