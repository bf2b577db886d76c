// Package process runs short-lived helper programs, such as the system
// clipboard tools, feeding them stdin and capturing their output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a helper that never exits, like an xclip waiting
// on a display that is gone.
const DefaultTimeout = 5 * time.Second

// Command is one helper invocation.
type Command struct {
	// Binary is resolved via PATH.
	Binary string
	Args   []string
	Stdin  io.Reader
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// Result is what the helper produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// ErrNoBinary is returned for a Command without a Binary.
var ErrNoBinary = errors.New("process: binary is required")

// Run executes cmd and waits for it. A non-zero exit is an error that
// carries the trimmed stderr; the Result is returned either way.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, ErrNoBinary
	}
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.Stdin = cmd.Stdin
	// Clipboard daemons such as xclip fork and keep the pipes open.
	c.WaitDelay = time.Second

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("process: %s killed: %w", cmd.Binary, ctx.Err())
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return res, fmt.Errorf("process: %s: %w: %s", cmd.Binary, err, msg)
	}
	return res, fmt.Errorf("process: %s: %w", cmd.Binary, err)
}
