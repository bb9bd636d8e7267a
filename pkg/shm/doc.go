// Package shm provides the fixed-capacity shared memory segment that carries
// data between the producer and the worker process.
//
// The segment holds a NUL-terminated byte string. The producer creates it,
// loads the input and hands it over by spawning the worker; the worker opens
// it, replaces the content with its results and exits; the producer reads the
// results after the worker terminated and releases the segment. Ownership is
// transferred by process sequencing only, so a Segment must never be touched
// by two processes at the same time.
//
// Spans and counters are emitted through OpenTelemetry when a Tracer or Meter
// is supplied; no-op providers are used otherwise.
//
// Example usage:
//
//	seg, err := shm.Create(ctx, shm.Options{Name: "/shared_mem_example"})
//	if err != nil {
//		return err
//	}
//	defer seg.Release(ctx)
//	if _, err := seg.Load(ctx, file, 256); err != nil {
//		return err
//	}
package shm
