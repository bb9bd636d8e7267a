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

// Package lifecycle describes the producer's run as a linear state machine and
// decodes how the worker process terminated.
package lifecycle

import (
	"fmt"
)

// State is a step of one producer run.
type State int

const (
	Idle State = iota
	SegmentCreated
	InputLoaded
	WorkerSpawned
	WorkerAwaited
	ResultRead
	SegmentReleased
	Terminal
)

var stateNames = [...]string{
	Idle:            "idle",
	SegmentCreated:  "segment_created",
	InputLoaded:     "input_loaded",
	WorkerSpawned:   "worker_spawned",
	WorkerAwaited:   "worker_awaited",
	ResultRead:      "result_read",
	SegmentReleased: "segment_released",
	Terminal:        "terminal",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Machine tracks a run. The zero value starts in Idle.
type Machine struct {
	state State
	// OnTransition, if set, observes every accepted transition.
	OnTransition func(from, to State)
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Advance moves to the next state. Besides the immediate successor only an
// abort jump forward to SegmentReleased (or Terminal from Idle, when nothing
// was created) is accepted; going back is never allowed.
func (m *Machine) Advance(to State) error {
	from := m.state
	ok := to == from+1 ||
		(to == SegmentReleased && from > Idle && from < SegmentReleased) ||
		(to == Terminal && from == Idle)
	if !ok {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	m.state = to
	if m.OnTransition != nil {
		m.OnTransition(from, to)
	}
	return nil
}
