package ansible

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrEmptyCommand is returned when an executor is asked to run an empty argv
var ErrEmptyCommand = errors.New("empty command: provide at least the binary name")

// ResolutionError reports a binary that could not be found on PATH or is not executable
type ResolutionError struct {
	Binary string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("binary file '%s' does not exist: (%v)", e.Binary, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SpawnError reports an OS-level failure to start a resolved binary
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// VerifyBinary checks that binary can be found on PATH and is executable.
// The binary is never run.
func VerifyBinary(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return &ResolutionError{Binary: binary, Err: err}
	}
	return nil
}

// Executor starts a compiled command and hands back the live process
type Executor interface {
	Run(ctx context.Context, command []string) (*Process, error)
}

// Process is a started child process with piped output streams.
// The caller owns it and must drain the streams before calling Wait.
type Process struct {
	Cmd    *exec.Cmd
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// Pid returns the OS process id
func (p *Process) Pid() int {
	if p.Cmd == nil || p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// Wait blocks until the process exits
func (p *Process) Wait() error {
	return p.Cmd.Wait()
}

// DefaultExecutor runs commands on the local host
type DefaultExecutor struct {
	Dir   string    // working directory, current one when empty
	Env   []string  // extra KEY=VALUE pairs appended to the process environment
	Stdin io.Reader // nil means no stdin
}

// Run verifies command[0] and starts it with stdout and stderr piped.
// It does not wait for the process to finish.
func (e *DefaultExecutor) Run(ctx context.Context, command []string) (*Process, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	binary := command[0]
	if err := VerifyBinary(binary); err != nil {
		return nil, fmt.Errorf("(executor run) %w", err)
	}

	cmd := exec.CommandContext(ctx, binary, command[1:]...)
	if e.Dir != "" {
		cmd.Dir = e.Dir
	}
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	cmd.Stdin = e.Stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Binary: binary, Err: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Binary: binary, Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Binary: binary, Err: err}
	}

	return &Process{
		Cmd:    cmd,
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}
