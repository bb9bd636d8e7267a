package shm

import (
	"errors"
	"fmt"

	internalshm "github.com/srediag/shmcalc/internal/shm"
)

// Segment errors. Returned errors wrap one of these together with the system
// error, so Error() reads "<context>: <system error text>".
var (
	ErrSegmentCreate   = errors.New("error creating shared memory")
	ErrSegmentOpen     = errors.New("error opening shared memory")
	ErrSegmentSize     = errors.New("error setting size for shared memory")
	ErrSegmentMap      = errors.New("error mapping shared memory")
	ErrSegmentRelease  = errors.New("error releasing shared memory")
	ErrSegmentOverflow = errors.New("shared memory overflow")
	ErrResultOverflow  = errors.New("error writing to shared memory")
	ErrUnterminated    = errors.New("shared memory content is not terminated")
	ErrReleased        = errors.New("shared memory segment already released")
)

func wrap(kind error, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}

// classify maps a platform stage failure onto the segment taxonomy.
func classify(create bool, err error) error {
	var se *internalshm.StageError
	if !errors.As(err, &se) {
		if create {
			return wrap(ErrSegmentCreate, err)
		}
		return wrap(ErrSegmentOpen, err)
	}
	switch se.Stage {
	case internalshm.StageTruncate:
		return wrap(ErrSegmentSize, se.Err)
	case internalshm.StageMmap:
		return wrap(ErrSegmentMap, se.Err)
	case internalshm.StageMunmap, internalshm.StageUnlink:
		return wrap(ErrSegmentRelease, se.Err)
	}
	if create {
		return wrap(ErrSegmentCreate, se.Err)
	}
	return wrap(ErrSegmentOpen, se.Err)
}
