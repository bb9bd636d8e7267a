//go:build linux

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/shmcalc/pkg/lifecycle"
	"github.com/srediag/shmcalc/pkg/producer"
)

// TestMain turns the test binary into the worker when the producer spawns it
// through the default command: the running executable with "worker".
func TestMain(m *testing.M) {
	if len(os.Args) == 2 && os.Args[1] == "worker" {
		main()
	}
	os.Exit(m.Run())
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHMCALC_SHM_DIR", t.TempDir())
	t.Setenv("SHMCALC_SEGMENT_NAME", "/"+uuid.NewString())

	var out bytes.Buffer
	cmd := newRootCmd()
	// never nil: cobra would fall back to the test binary's own flags
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_RoundTrip(t *testing.T) {
	t.Setenv("SHMCALC_WORKER_PATH", "")
	t.Setenv("SHMCALC_WORKER_ARGS", "worker")
	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("10 2\n20 4\n"), 0o600))

	out, err := run(t, "", input)
	require.NoError(t, err)
	assert.Equal(t, "Results:\n5.00\n5.00\n", out)
}

func TestRoot_WorkerDivisionByZero(t *testing.T) {
	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("6 0\n"), 0o600))

	out, err := run(t, "", input)
	var status exitStatus
	require.True(t, errors.As(err, &status))
	assert.Equal(t, lifecycle.ExitFailure, int(status))
	assert.Equal(t, producer.DivisionByZeroMessage+"\n", out)
}

func TestRoot_MissingFile(t *testing.T) {
	_, err := run(t, "", filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, producer.ErrSourceOpen)
	assert.Equal(t, 1, exitCode(err))
}

func TestRoot_PromptsForPath(t *testing.T) {
	out, err := run(t, "")
	require.ErrorIs(t, err, producer.ErrPrompt)
	assert.Equal(t, producer.Prompt, out)
}

func TestRoot_TooManyArgs(t *testing.T) {
	_, err := run(t, "", "a", "b")
	require.Error(t, err)
}

func TestWorker_NoSegment(t *testing.T) {
	out, err := run(t, "", "worker")
	var status exitStatus
	require.True(t, errors.As(err, &status))
	assert.Equal(t, lifecycle.ExitFailure, int(status))
	assert.Contains(t, out, "error opening shared memory")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 3, exitCode(exitStatus(3)))
}
