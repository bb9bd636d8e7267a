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

package lifecycle

import (
	"fmt"
	"os"
	"syscall"
)

// Worker exit statuses. They are the only error channel from the worker back
// to the producer.
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitDivisionByZero = 3
)

// Outcome is how the worker process terminated.
type Outcome int

const (
	Success Outcome = iota
	DivisionByZero
	GenericFailure
	AbnormalTermination
)

var outcomeNames = [...]string{
	Success:             "success",
	DivisionByZero:      "division_by_zero",
	GenericFailure:      "generic_failure",
	AbnormalTermination: "abnormal_termination",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Termination is a decoded worker exit.
type Termination struct {
	Outcome Outcome
	// Status is the exit status; -1 for abnormal terminations.
	Status int
	// Signal is set for abnormal terminations caused by a signal.
	Signal syscall.Signal
}

// Decode classifies a finished process. Only a normal exit with status 0 is
// Success; a signal-killed worker is never mistaken for one.
func Decode(ps *os.ProcessState) Termination {
	if ps == nil {
		return Termination{Outcome: AbnormalTermination, Status: -1}
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Termination{Outcome: AbnormalTermination, Status: -1, Signal: ws.Signal()}
	}
	if !ps.Exited() {
		return Termination{Outcome: AbnormalTermination, Status: -1}
	}
	return FromExitCode(ps.ExitCode())
}

// FromExitCode classifies a normal exit status.
func FromExitCode(code int) Termination {
	switch code {
	case ExitSuccess:
		return Termination{Outcome: Success, Status: code}
	case ExitDivisionByZero:
		return Termination{Outcome: DivisionByZero, Status: code}
	default:
		return Termination{Outcome: GenericFailure, Status: code}
	}
}

func (t Termination) String() string {
	switch t.Outcome {
	case AbnormalTermination:
		if t.Signal != 0 {
			return fmt.Sprintf("%s (signal: %s)", t.Outcome, t.Signal)
		}
		return t.Outcome.String()
	default:
		return fmt.Sprintf("%s (exit status %d)", t.Outcome, t.Status)
	}
}
