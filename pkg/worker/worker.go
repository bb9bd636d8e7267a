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

// Package worker implements the child side of the segment handoff: open the
// producer's segment, replace its content with evaluated results and report
// the outcome through the exit status.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"

	"github.com/srediag/shmcalc/internal/config"
	"github.com/srediag/shmcalc/internal/logging"
	"github.com/srediag/shmcalc/pkg/eval"
	"github.com/srediag/shmcalc/pkg/lifecycle"
	"github.com/srediag/shmcalc/pkg/shm"
)

// Worker evaluates the segment named by its configuration.
type Worker struct {
	cfg    *config.Config
	log    *logging.Logger
	stderr io.Writer
}

// New returns a Worker. Diagnostics for setup failures go to stderr.
func New(cfg *config.Config, log *logging.Logger, stderr io.Writer) *Worker {
	if log == nil {
		log = logging.NewNop()
	}
	return &Worker{cfg: cfg, log: log.Named("worker"), stderr: stderr}
}

// Run performs one evaluation and returns the process exit status.
func (w *Worker) Run(ctx context.Context) int {
	opts := w.cfg.SegmentOptions()
	opts.Logger = w.log.Logger
	seg, err := shm.Open(ctx, opts)
	if err != nil {
		w.fail(err)
		return lifecycle.ExitFailure
	}
	status := w.process(ctx, seg)
	if err := seg.Release(ctx); err != nil {
		w.fail(err)
		if status == lifecycle.ExitSuccess {
			status = lifecycle.ExitFailure
		}
	}
	return status
}

func (w *Worker) process(ctx context.Context, seg *shm.Segment) int {
	input, err := seg.Content()
	if err != nil {
		w.fail(err)
		return lifecycle.ExitFailure
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B, err = eval.AppendResults(buf.B[:0], input)
	if errors.Is(err, eval.ErrDivisionByZero) {
		// the exit status is the whole payload; the segment is left as is
		w.log.Debug("evaluation aborted", zap.Error(err))
		return lifecycle.ExitDivisionByZero
	}
	if err != nil {
		w.fail(err)
		return lifecycle.ExitFailure
	}

	if err := seg.Store(ctx, buf.B); err != nil {
		w.fail(err)
		return lifecycle.ExitFailure
	}
	w.log.Debug("results stored", zap.Int("input_bytes", len(input)), zap.Int("result_bytes", buf.Len()))
	return lifecycle.ExitSuccess
}

func (w *Worker) fail(err error) {
	w.log.Debug("worker failed", zap.Error(err))
	if w.stderr != nil {
		fmt.Fprintln(w.stderr, err)
	}
}
