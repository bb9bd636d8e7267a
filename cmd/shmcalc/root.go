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

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/srediag/shmcalc/internal/config"
	"github.com/srediag/shmcalc/internal/logging"
	"github.com/srediag/shmcalc/pkg/lifecycle"
	"github.com/srediag/shmcalc/pkg/producer"
	"github.com/srediag/shmcalc/pkg/worker"
)

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	verbose bool
	cfg     *config.Config
	log     *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "shmcalc [file]",
		Short: "Divide numbers line by line in a worker process over shared memory",
		Long: `shmcalc copies a file into a POSIX shared memory segment, spawns a worker
that replaces every line "t0 t1 ... tn" with t0/t1/.../tn formatted as %.2f,
waits for it and prints the results.

Without a file argument the path is read from standard input.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: a.runProducer,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:    "worker",
		Short:  "Evaluate the shared memory segment in place (spawned by the producer)",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE:   a.runWorker,
	})
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) runProducer(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		p, err := producer.PromptPath(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		path = p
	}
	src, err := producer.OpenSource(path)
	if err != nil {
		return err
	}
	defer src.Close()

	p := producer.New(a.cfg, a.log, nil, producer.Stdio{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})
	term, err := p.Run(cmd.Context(), src)
	if err != nil {
		return err
	}
	a.log.Debug("run finished", zap.String("input", path), zap.Stringer("termination", term))
	if term.Outcome != lifecycle.Success {
		return exitStatus(lifecycle.ExitFailure)
	}
	return nil
}

func (a *app) runWorker(cmd *cobra.Command, args []string) error {
	status := worker.New(a.cfg, a.log, cmd.ErrOrStderr()).Run(cmd.Context())
	if status != lifecycle.ExitSuccess {
		return exitStatus(status)
	}
	return nil
}
