package command

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances and resolves executables, so tests
// can substitute fake handlers without touching PATH.
type Executor interface {
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd

	// LookPath resolves name the way CommandContext will.
	LookPath(name string) (string, error)
}

// RealExecutor uses os/exec directly.
type RealExecutor struct{}

func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
