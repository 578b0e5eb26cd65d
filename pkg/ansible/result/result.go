// Package result consumes a started ansible-playbook process: it streams
// the output, waits for the exit status and summarises the PLAY RECAP.
package result

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"frameworks/ansible/pkg/ansible"
)

const defaultTailBytes = 8 << 10

// ExitError reports a playbook run that finished with a non-zero status
type ExitError struct {
	ExitCode int
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ansible-playbook exited with status %d: %v", e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Options controls where output goes while the process runs
type Options struct {
	Stdout    io.Writer // receives stdout lines, discarded when nil
	Stderr    io.Writer // receives stderr lines, discarded when nil
	TailBytes int       // combined output kept in Result.Output; 8 KiB when zero
}

// Result holds a finished run
type Result struct {
	ExitCode int
	Output   string // last TailBytes of stdout and stderr, in arrival order
	Stats    *Stats
	Duration time.Duration
}

// Success reports a zero exit status with no failed or unreachable hosts
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Stats.Success()
}

// Wait drains both output streams of proc, then waits for it to exit.
// A non-zero exit status is returned as *ExitError alongside the result.
func Wait(proc *ansible.Process, opts Options) (*Result, error) {
	start := time.Now()
	if opts.TailBytes <= 0 {
		opts.TailBytes = defaultTailBytes
	}

	tail := newTailBuffer(opts.TailBytes)
	stats := newStatsParser()

	// Stdout and Stderr may be the same writer
	var writeMu sync.Mutex

	var g errgroup.Group
	g.Go(func() error {
		return copyLines(proc.Stdout, opts.Stdout, &writeMu, tail, stats)
	})
	g.Go(func() error {
		return copyLines(proc.Stderr, opts.Stderr, &writeMu, tail, nil)
	})
	streamErr := g.Wait()

	res := &Result{}
	waitErr := proc.Wait()
	res.Duration = time.Since(start)
	res.Output = tail.String()
	res.Stats = stats.Stats()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		return res, &ExitError{ExitCode: res.ExitCode, Err: waitErr}
	}

	if streamErr != nil {
		return res, fmt.Errorf("failed to read playbook output: %w", streamErr)
	}

	return res, nil
}

func copyLines(r io.Reader, w io.Writer, mu *sync.Mutex, tail *tailBuffer, stats *statsParser) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if w != nil {
			mu.Lock()
			_, err := fmt.Fprintln(w, line)
			mu.Unlock()
			if err != nil {
				// keep the child from blocking on a full pipe
				_, _ = io.Copy(io.Discard, r)
				return err
			}
		}
		tail.WriteLine(line)
		if stats != nil {
			stats.Feed(line)
		}
	}

	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) WriteLine(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, line...)
	t.buf = append(t.buf, '\n')
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
