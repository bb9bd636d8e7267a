/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package producer implements the parent side of the segment handoff.
//
// A run creates the segment, loads the input, spawns the worker and blocks
// until it terminates. That wait is the only synchronization between the two
// processes: the producer does not touch the segment while the worker runs.
// Afterwards the worker's exit status decides whether the segment holds
// results, and the segment is released exactly once on every path.
package producer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/srediag/shmcalc/internal/config"
	"github.com/srediag/shmcalc/internal/logging"
	"github.com/srediag/shmcalc/internal/metrics"
	"github.com/srediag/shmcalc/pkg/lifecycle"
	"github.com/srediag/shmcalc/pkg/shm"
)

// DivisionByZeroMessage is reported when the worker exits with
// lifecycle.ExitDivisionByZero.
const DivisionByZeroMessage = "Child process terminated with division by zero."

// ResultsHeader precedes the result stream on stdout.
const ResultsHeader = "Results:\n"

// Stdio is handed to the worker unchanged; Out and Err also receive the
// producer's own report.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Producer runs segment handoffs with one configuration.
type Producer struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Collector
	stdio   Stdio
}

// New returns a Producer. A nil logger or collector is replaced by a no-op
// logger and a private collector.
func New(cfg *config.Config, log *logging.Logger, m *metrics.Collector, stdio Stdio) *Producer {
	if log == nil {
		log = logging.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	if stdio.Out == nil {
		stdio.Out = io.Discard
	}
	if stdio.Err == nil {
		stdio.Err = io.Discard
	}
	return &Producer{cfg: cfg, log: log.Named("producer"), metrics: m, stdio: stdio}
}

// Metrics returns the producer's collector.
func (p *Producer) Metrics() *metrics.Collector { return p.metrics }

// Run performs one full handoff with src as input. A non-nil error means the
// run failed before the worker's outcome could be reported; otherwise the
// returned Termination tells how the worker ended and the matching report has
// been written.
func (p *Producer) Run(ctx context.Context, src io.Reader) (term lifecycle.Termination, err error) {
	m := &lifecycle.Machine{OnTransition: func(from, to lifecycle.State) {
		p.log.Debug("transition", zap.Stringer("from", from), zap.Stringer("to", to))
	}}
	defer p.dumpMetrics()

	opts := p.cfg.SegmentOptions()
	opts.Logger = p.log.Logger
	seg, err := shm.Create(ctx, opts)
	if err != nil {
		p.must(m.Advance(lifecycle.Terminal))
		return term, err
	}
	p.metrics.SegmentCreated()
	p.must(m.Advance(lifecycle.SegmentCreated))

	defer func() {
		if m.State() < lifecycle.SegmentReleased {
			err = errors.Join(err, p.release(ctx, m, seg))
			p.must(m.Advance(lifecycle.Terminal))
		}
	}()

	n, err := seg.Load(ctx, src, p.cfg.ChunkSize)
	if err != nil {
		if errors.Is(err, shm.ErrSegmentOverflow) {
			p.metrics.Overflow()
			return term, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return term, err
		}
		return term, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}
	p.metrics.InputLoaded(n)
	p.must(m.Advance(lifecycle.InputLoaded))

	cmd, err := p.command(ctx)
	if err != nil {
		return term, err
	}
	if err := cmd.Start(); err != nil {
		return term, fmt.Errorf("%w: %w", ErrSpawn, unwrapExec(err))
	}
	p.must(m.Advance(lifecycle.WorkerSpawned))
	p.log.Debug("worker spawned", zap.Int("pid", cmd.Process.Pid), zap.Strings("args", cmd.Args))

	// Rendezvous: the worker owns the segment until it has terminated.
	if werr := cmd.Wait(); werr != nil {
		var ee *exec.ExitError
		if !errors.As(werr, &ee) {
			p.log.Warn("waiting for worker", zap.Error(werr))
		}
	}
	term = lifecycle.Decode(cmd.ProcessState)
	p.metrics.Outcome(term.Outcome.String())
	p.must(m.Advance(lifecycle.WorkerAwaited))
	p.log.Debug("worker terminated", zap.Stringer("termination", term))

	err = p.report(seg, term)
	p.must(m.Advance(lifecycle.ResultRead))

	err = errors.Join(err, p.release(ctx, m, seg))
	p.must(m.Advance(lifecycle.Terminal))
	return term, err
}

// report writes the outcome of the worker. Results are read only on Success.
func (p *Producer) report(seg *shm.Segment, term lifecycle.Termination) error {
	switch term.Outcome {
	case lifecycle.Success:
		results, err := seg.Content()
		if err != nil {
			return err
		}
		p.metrics.ResultRead(len(results))
		if _, err := io.WriteString(p.stdio.Out, ResultsHeader); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		if _, err := p.stdio.Out.Write(results); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	case lifecycle.DivisionByZero:
		fmt.Fprintln(p.stdio.Err, DivisionByZeroMessage)
	case lifecycle.GenericFailure:
		fmt.Fprintf(p.stdio.Err, "Child process failed with exit status %d.\n", term.Status)
	case lifecycle.AbnormalTermination:
		if term.Signal != 0 {
			fmt.Fprintf(p.stdio.Err, "Child process terminated by signal: %s.\n", term.Signal)
		} else {
			fmt.Fprintln(p.stdio.Err, "Child process terminated abnormally.")
		}
	default:
		return fmt.Errorf("unknown worker outcome %s", term.Outcome)
	}
	return nil
}

func (p *Producer) release(ctx context.Context, m *lifecycle.Machine, seg *shm.Segment) error {
	err := seg.Release(ctx)
	p.must(m.Advance(lifecycle.SegmentReleased))
	if err != nil {
		return err
	}
	p.metrics.SegmentReleased()
	return nil
}

func (p *Producer) command(ctx context.Context) (*exec.Cmd, error) {
	path := p.cfg.WorkerPath
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
		}
		path = exe
	}
	var args []string
	for _, a := range p.cfg.WorkerArgs {
		if a != "" {
			args = append(args, a)
		}
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = p.stdio.In
	cmd.Stdout = p.stdio.Out
	cmd.Stderr = p.stdio.Err
	setSysProcAttr(cmd)
	return cmd, nil
}

func (p *Producer) dumpMetrics() {
	if p.cfg.MetricsFile == "" {
		return
	}
	if err := p.metrics.WriteTextfile(p.cfg.MetricsFile); err != nil {
		p.log.Warn("writing metrics textfile", zap.String("path", p.cfg.MetricsFile), zap.Error(err))
	}
}

// must logs transitions the run order makes impossible.
func (p *Producer) must(err error) {
	if err != nil {
		p.log.Error("lifecycle violation", zap.Error(err))
	}
}

// unwrapExec strips exec's "fork/exec <path>:" decoration down to the errno.
func unwrapExec(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
