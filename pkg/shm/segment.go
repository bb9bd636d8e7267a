package shm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	internalshm "github.com/srediag/shmcalc/internal/shm"
)

const (
	// Capacity is the fixed size of every segment, terminator included.
	Capacity = 4096
	// DefaultName is the segment name shared by producer and worker.
	DefaultName = "/shared_mem_example"
	// DefaultChunkSize is the read size used when loading input.
	DefaultChunkSize = 256

	instrumentationName = "github.com/srediag/shmcalc/pkg/shm"
)

// Options identifies a segment and carries optional instrumentation.
type Options struct {
	// Name is the POSIX shm name, e.g. "/shared_mem_example".
	Name string
	// Dir is the directory backing shm objects; empty means /dev/shm.
	Dir    string
	Logger *zap.Logger
	Meter  metric.Meter
	Tracer trace.Tracer
}

// Segment is a mapped shared memory segment of Capacity bytes.
type Segment struct {
	region   *internalshm.MappedRegion
	mem      []byte
	owner    bool
	released bool

	log          *zap.Logger
	tracer       trace.Tracer
	bytesWritten metric.Int64Counter
}

// Create creates (or reuses) the named segment, sizes it to Capacity and maps
// it read-write. The caller owns the segment: Release also unlinks the name.
func Create(ctx context.Context, opts Options) (*Segment, error) {
	return mapSegment(ctx, opts, true)
}

// Open maps an existing segment created by another process. Release only
// unmaps it.
func Open(ctx context.Context, opts Options) (*Segment, error) {
	return mapSegment(ctx, opts, false)
}

func mapSegment(ctx context.Context, opts Options, create bool) (*Segment, error) {
	s := &Segment{owner: create}
	s.instrument(opts)

	spanName := "shm.Open"
	if create {
		spanName = "shm.Create"
	}
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	region, err := internalshm.MapRegion(ctx, internalshm.MapOptions{
		Name:   opts.Name,
		Dir:    opts.Dir,
		Size:   Capacity,
		Create: create,
	})
	if err != nil {
		err = classify(create, err)
		span.RecordError(err)
		return nil, err
	}
	s.region = region
	s.mem = region.Addr
	s.log.Debug("segment mapped",
		zap.String("name", region.Name),
		zap.String("path", region.Path),
		zap.Bool("owner", create))
	return s, nil
}

func (s *Segment) instrument(opts Options) {
	s.log = opts.Logger
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.tracer = opts.Tracer
	if s.tracer == nil {
		s.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	meter := opts.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	counter, err := meter.Int64Counter("shmcalc.segment.bytes_written",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes written into shared memory segments, terminator excluded."))
	if err != nil {
		s.log.Warn("bytes_written counter unavailable", zap.Error(err))
		counter, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("shmcalc.segment.bytes_written")
	}
	s.bytesWritten = counter
}

// Name returns the segment's shm name.
func (s *Segment) Name() string { return s.region.Name }

// Cap returns the segment capacity in bytes, terminator included.
func (s *Segment) Cap() int { return Capacity }

// Owner reports whether this handle created the segment.
func (s *Segment) Owner() bool { return s.owner }

// Load copies r into the segment from offset 0 in chunkSize reads and
// terminates it. A chunk that would leave no room for the terminator fails
// with ErrSegmentOverflow and is not copied, so at most Capacity-1 (4095)
// content bytes are accepted. Read errors are returned as is.
func (s *Segment) Load(ctx context.Context, r io.Reader, chunkSize int) (int, error) {
	if s.released {
		return 0, ErrReleased
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunk := make([]byte, chunkSize)
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return offset, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			if offset+n >= len(s.mem) {
				return offset, fmt.Errorf("%w: input does not fit in %d bytes", ErrSegmentOverflow, len(s.mem)-1)
			}
			copy(s.mem[offset:], chunk[:n])
			offset += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return offset, err
		}
	}
	s.mem[offset] = 0
	s.bytesWritten.Add(ctx, int64(offset))
	s.log.Debug("input loaded", zap.Int("bytes", offset))
	return offset, nil
}

// Content returns the bytes before the terminator. The slice aliases the
// mapping and is only valid until Release.
func (s *Segment) Content() ([]byte, error) {
	if s.released {
		return nil, ErrReleased
	}
	end := bytes.IndexByte(s.mem, 0)
	if end < 0 {
		return nil, ErrUnterminated
	}
	return s.mem[:end:end], nil
}

// Store replaces the content with p and terminates it. If p and its
// terminator do not fit, nothing is written and ErrResultOverflow is returned.
func (s *Segment) Store(ctx context.Context, p []byte) error {
	if s.released {
		return ErrReleased
	}
	if len(p) >= len(s.mem) {
		return fmt.Errorf("%w: %d result bytes do not fit in %d", ErrResultOverflow, len(p), len(s.mem)-1)
	}
	copy(s.mem, p)
	s.mem[len(p)] = 0
	s.bytesWritten.Add(ctx, int64(len(p)))
	return nil
}

// Release unmaps the segment and, for the owner, unlinks its name. Only the
// first call has any effect.
func (s *Segment) Release(ctx context.Context) error {
	if s.released {
		return nil
	}
	s.released = true
	_, span := s.tracer.Start(ctx, "shm.Release")
	defer span.End()

	var errs []error
	if err := internalshm.UnmapRegion(ctx, s.region); err != nil {
		errs = append(errs, classify(s.owner, err))
	}
	s.mem = nil
	if s.owner {
		if err := internalshm.UnlinkRegion(ctx, s.region); err != nil {
			errs = append(errs, classify(s.owner, err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.log.Debug("segment released", zap.String("name", s.region.Name), zap.Bool("unlinked", s.owner))
	return nil
}
