package errors

import (
	"fmt"
	"os/exec"
	"strings"
)

// UnknownHookType creates an error for a hook name missing from the hook catalog.
// name is the candidate as supplied, normalized is its canonical form.
func UnknownHookType(name, normalized string) *HookError {
	return New(ErrCodeUnknownHookType, fmt.Sprintf("unknown hook type: %s", name)).
		WithDetail("hook", name).
		WithDetail("normalized", normalized)
}

// UnknownFlagKey creates an error for a flag catalog lookup of an unregistered hook.
func UnknownFlagKey(hook string) *HookError {
	return New(ErrCodeUnknownFlagKey, fmt.Sprintf("no flag definitions for hook '%s'", hook)).
		WithDetail("hook", hook)
}

// DuplicateFlag creates an error for a flag that already exists on a hook.
func DuplicateFlag(hook, flag string) *HookError {
	return New(ErrCodeDuplicateFlag, fmt.Sprintf("flag %s is already defined for hook '%s'", flag, hook)).
		WithDetail("hook", hook).
		WithDetail("flag", flag)
}

// UnsupportedExtension creates an error for extending a hook that takes no custom flags.
func UnsupportedExtension(hook string) *HookError {
	return New(ErrCodeUnsupportedExtension, fmt.Sprintf("hook '%s' does not accept custom approval categories", hook)).
		WithDetail("hook", hook)
}

// InvalidArguments wraps an argument parsing failure for a hook.
func InvalidArguments(hook string, cause error) *HookError {
	return Wrap(cause, ErrCodeInvalidArguments, fmt.Sprintf("invalid arguments for hook '%s'", hook)).
		WithDetail("hook", hook)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *HookError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *HookError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// HooksDirNotFound creates an error for a missing Gerrit hooks directory.
func HooksDirNotFound(dir string) *HookError {
	return New(ErrCodeHooksDirNotFound, fmt.Sprintf("hooks directory not found: %s", dir)).
		WithDetail("dir", dir)
}

// BackupExists creates an error for a hook that cannot be backed up
// because an earlier backup is still in place.
func BackupExists(path, backup string) *HookError {
	return New(ErrCodeBackupExists, fmt.Sprintf("backup already exists: %s", backup)).
		WithDetail("path", path).
		WithDetail("backup", backup)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, args []string, err error) *HookError {
	full := strings.TrimSpace(cmd + " " + strings.Join(args, " "))
	hookErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", full)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		hookErr = hookErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return hookErr
}

// CommandTimeout creates a handler timeout error
func CommandTimeout(cmd string, timeout string) *HookError {
	return New(ErrCodeCommandTimeout,
		fmt.Sprintf("command '%s' did not finish within %s", cmd, timeout)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout)
}

// CommandNotFound creates an error for a handler executable that does not exist
func CommandNotFound(cmd string, err error) *HookError {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", cmd)).
		WithDetail("command", cmd)
}
