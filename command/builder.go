// Package command builds and runs handler commands with validation,
// timeouts, and coded errors.
package command

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/hooks"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute

	// waitDelay bounds how long Run waits for output pipes after the
	// process is killed.
	waitDelay = 2 * time.Second
)

// SafeBuilder provides validated command construction
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"command":  validateCommandName,
		"fileName": validateFileName,
		"hookName": validateHookName,
		"label":    flags.ValidateLabel,
	}
}

// validateCommandName rejects names a shell would interpret. Handlers are
// executed directly, never through a shell.
func validateCommandName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if strings.ContainsAny(name, ";|&$`\n\x00") {
		return fmt.Errorf("command name contains invalid characters: %q", name)
	}
	return nil
}

// validateFileName ensures file paths are safe
func validateFileName(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// Prevent directory traversal
	if strings.Contains(path, "..") {
		return fmt.Errorf("file path cannot contain '..'")
	}

	if strings.ContainsAny(path, ";|&$`") {
		return fmt.Errorf("file path contains invalid characters")
	}

	return nil
}

func validateHookName(name string) error {
	if _, ok := hooks.Lookup(name); !ok {
		return fmt.Errorf("unknown hook: %s", name)
	}
	return nil
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Build creates a new command after validating its name.
func (sb *SafeBuilder) Build(name string, args ...string) (*Command, error) {
	if err := sb.Validate("command", name); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid command").
			WithDetail("command", name)
	}

	return &Command{
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// Resolve reports the path name would execute from, or a COMMAND_NOT_FOUND error.
func (sb *SafeBuilder) Resolve(name string) (string, error) {
	path, err := sb.executor.LookPath(name)
	if err != nil {
		return "", errors.CommandNotFound(name, err)
	}
	return path, nil
}

// Command represents a validated command configuration
type Command struct {
	name     string
	args     []string
	timeout  time.Duration
	dir      string
	env      []string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	executor Executor
}

// WithTimeout sets a custom timeout for the command. Non-positive values
// select DefaultTimeout; values above MaxTimeout are clamped.
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	switch {
	case timeout <= 0:
		timeout = DefaultTimeout
	case timeout > MaxTimeout:
		timeout = MaxTimeout
	}
	c.timeout = timeout
	return c
}

// WithDir sets the working directory.
func (c *Command) WithDir(dir string) *Command {
	c.dir = dir
	return c
}

// WithEnv adds KEY=value pairs on top of the current environment.
func (c *Command) WithEnv(env ...string) *Command {
	c.env = append(c.env, env...)
	return c
}

// WithStdin sets the command's standard input.
func (c *Command) WithStdin(r io.Reader) *Command {
	c.stdin = r
	return c
}

// WithOutput sets where the command's stdout and stderr go.
func (c *Command) WithOutput(stdout, stderr io.Writer) *Command {
	c.stdout = stdout
	c.stderr = stderr
	return c
}

// Timeout returns the effective timeout.
func (c *Command) Timeout() time.Duration {
	return c.timeout
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Exec creates the exec.Cmd for ctx without starting it.
func (c *Command) Exec(ctx context.Context) *exec.Cmd {
	cmd := c.executor.CommandContext(ctx, c.name, c.args...) //nolint:gosec // name is validated by SafeBuilder
	cmd.Dir = c.dir
	cmd.Env = append(os.Environ(), c.env...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	cmd.WaitDelay = waitDelay
	return cmd
}

// Run executes the command and waits for it, bounded by the command's
// timeout. Failures are returned as COMMAND_NOT_FOUND, COMMAND_TIMEOUT or
// COMMAND_FAILED errors.
func (c *Command) Run(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.Exec(runCtx).Run()
	switch {
	case err == nil:
		return nil
	case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
		return errors.CommandTimeout(c.name, c.timeout.String()).
			WithDetail("args", c.args)
	case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist):
		return errors.CommandNotFound(c.name, err)
	default:
		return errors.CommandFailed(c.name, c.args, err)
	}
}
