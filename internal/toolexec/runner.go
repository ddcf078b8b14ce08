// Package toolexec runs external build and check tools. The Runner
// interface exists so orchestration code can be exercised with recording
// stubs instead of real subprocesses.
package toolexec

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
)

// Cmd describes one tool invocation. Every invocation blocks its calling
// goroutine until the process exits.
type Cmd struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the inherited environment.
	Env []string
	// Stdout and Stderr, when set, receive the process output directly.
	// When nil, output is captured and returned by Run.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes tool invocations.
type Runner interface {
	// Run executes the command and returns its captured combined output
	// when no writers were supplied. A non-zero exit is returned as an
	// error alongside whatever output was captured.
	Run(ctx context.Context, c Cmd) ([]byte, error)
}

// ExecRunner runs commands as real subprocesses.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Cmd) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var captured *bytes.Buffer
	if c.Stdout != nil || c.Stderr != nil {
		cmd.Stdout = c.Stdout
		cmd.Stderr = c.Stderr
	} else {
		captured = bytes.NewBuffer(nil)
		cmd.Stdout = captured
		cmd.Stderr = captured
	}

	slog.DebugContext(ctx, "running tool", "name", c.Name, "args", c.Args, "dir", c.Dir)
	err := cmd.Run()
	if captured != nil {
		return captured.Bytes(), err
	}
	return nil, err
}
