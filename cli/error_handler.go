package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message for err based on its error code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := DefaultTheme
	prefix := t.Error.Render("Error:")
	hookErr, _ := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeUnknownHookType:
		name := hookErr.Detail("hook")
		fmt.Fprintf(h.Out, "%s unknown hook type '%s'\n", prefix, name)
		if suggestions := SuggestHooks(name); len(suggestions) > 0 {
			fmt.Fprintf(h.Out, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
		fmt.Fprintln(h.Out, t.Muted.Render("Run 'gerrit-hooks list' to see the supported hooks."))

	case errors.ErrCodeInvalidArguments:
		fmt.Fprintf(h.Out, "%s %v\n", prefix, rootCause(err))
		if hook := hookErr.Detail("hook"); hook != "" {
			fmt.Fprintln(h.Out, t.Muted.Render(fmt.Sprintf("Run 'gerrit-hooks flags %s' to see the accepted flags.", hook)))
		}

	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "%s configuration not found. Create gerrit-hooks.yml or pass --config.\n", prefix)

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "%s %s\n", prefix, hookErr.Message)
		if hookErr.Cause != nil {
			fmt.Fprintln(h.Out, rootCause(err))
		}
		if path := hookErr.Detail("path"); path != "" {
			fmt.Fprintf(h.Out, "  in %s\n", path)
		}

	case errors.ErrCodeHooksDirNotFound:
		fmt.Fprintf(h.Out, "%s hooks directory '%s' does not exist\n", prefix, hookErr.Detail("dir"))
		fmt.Fprintln(h.Out, t.Muted.Render("Pass --create to create it, or set hooks_dir in gerrit-hooks.yml."))

	case errors.ErrCodeBackupExists:
		fmt.Fprintf(h.Out, "%s '%s' is not managed by gerrit-hooks and '%s' already holds a backup\n",
			prefix, hookErr.Detail("path"), hookErr.Detail("backup"))
		fmt.Fprintln(h.Out, t.Muted.Render("Move one of the two files aside, then run install again."))

	case errors.ErrCodeCommandNotFound:
		fmt.Fprintf(h.Out, "%s handler command '%s' not found\n", prefix, hookErr.Detail("command"))

	case errors.ErrCodeCommandTimeout:
		fmt.Fprintf(h.Out, "%s handler '%s' did not finish within %s\n",
			prefix, hookErr.Detail("command"), hookErr.Detail("timeout"))

	case errors.ErrCodeInvalidInput:
		if hookErr.Cause != nil {
			fmt.Fprintf(h.Out, "%s %s: %v\n", prefix, hookErr.Message, rootCause(err))
		} else {
			fmt.Fprintf(h.Out, "%s %s\n", prefix, hookErr.Message)
		}

	default:
		fmt.Fprintf(h.Out, "%s %v\n", prefix, err)
	}

	if h.Verbose && hookErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", hookErr.ToJSON())
	}
	return err
}

// SuggestHooks returns up to three external hook names that fuzzily match name.
func SuggestHooks(name string) []string {
	pattern := strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	if pattern == "" {
		return nil
	}

	matches := fuzzy.Find(pattern, hooks.Names())
	suggestions := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}

// rootCause returns the innermost error of a HookError chain.
func rootCause(err error) error {
	for {
		hookErr, ok := err.(*errors.HookError)
		if !ok || hookErr.Cause == nil {
			return err
		}
		err = hookErr.Cause
	}
}
