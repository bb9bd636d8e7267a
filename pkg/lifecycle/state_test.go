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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	var seen []string
	m := &Machine{OnTransition: func(from, to State) {
		seen = append(seen, from.String()+">"+to.String())
	}}
	for _, s := range []State{SegmentCreated, InputLoaded, WorkerSpawned, WorkerAwaited, ResultRead, SegmentReleased, Terminal} {
		require.NoError(t, m.Advance(s))
	}
	assert.Equal(t, Terminal, m.State())
	assert.Len(t, seen, 7)
	assert.Equal(t, "idle>segment_created", seen[0])
	assert.Equal(t, "segment_released>terminal", seen[6])
}

func TestMachine_AbortJumps(t *testing.T) {
	m := &Machine{}
	require.NoError(t, m.Advance(SegmentCreated))
	require.NoError(t, m.Advance(SegmentReleased), "overflow aborts before spawning")
	require.NoError(t, m.Advance(Terminal))

	m = &Machine{}
	require.NoError(t, m.Advance(Terminal), "creation failed, nothing to release")
}

func TestMachine_Rejects(t *testing.T) {
	m := &Machine{}
	assert.Error(t, m.Advance(InputLoaded))
	assert.Error(t, m.Advance(SegmentReleased))
	assert.Error(t, m.Advance(Idle))

	require.NoError(t, m.Advance(SegmentCreated))
	require.NoError(t, m.Advance(InputLoaded))
	assert.Error(t, m.Advance(SegmentCreated), "no going back")
	assert.Error(t, m.Advance(Terminal), "segment must be released first")
	assert.Error(t, m.Advance(InputLoaded))
	assert.Equal(t, InputLoaded, m.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "worker_awaited", WorkerAwaited.String())
	assert.Equal(t, "state(42)", State(42).String())
	assert.Equal(t, "division_by_zero", DivisionByZero.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
