// Package handler dispatches a parsed hook invocation to the commands
// configured for it.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/gerrit-hooks/command"
	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/grovetools/gerrit-hooks/parser"
	"github.com/sirupsen/logrus"
)

// Invocation is one run of a hook, identified by a random ID that appears
// in logs and in every handler's environment.
type Invocation struct {
	ID      string
	Options *parser.Options
}

// NewInvocation wraps opts with a fresh invocation ID.
func NewInvocation(opts *parser.Options) *Invocation {
	return &Invocation{ID: uuid.NewString(), Options: opts}
}

// Hook returns the hook being run.
func (inv *Invocation) Hook() hooks.Hook {
	return inv.Options.Hook()
}

// Env returns the variables handlers receive on top of the inherited environment.
func (inv *Invocation) Env() []string {
	env := []string{
		"GERRIT_HOOK=" + inv.Hook().External(),
		"GERRIT_HOOK_INVOCATION=" + inv.ID,
	}
	return append(env, inv.Options.Env()...)
}

// Payload is the JSON document written to each handler's stdin.
type Payload struct {
	Hook       string            `json:"hook"`
	Invocation string            `json:"invocation"`
	Options    *parser.Options   `json:"options"`
	Approvals  []parser.Approval `json:"approvals,omitempty"`
}

// Payload renders the stdin document.
func (inv *Invocation) Payload() ([]byte, error) {
	return json.Marshal(Payload{
		Hook:       inv.Hook().External(),
		Invocation: inv.ID,
		Options:    inv.Options,
		Approvals:  inv.Options.Approvals(),
	})
}

// Dispatcher runs handlers one after another.
type Dispatcher struct {
	builder *command.SafeBuilder
	logger  *logrus.Entry
	stdout  io.Writer
	stderr  io.Writer
}

// NewDispatcher creates a dispatcher that builds commands with builder.
// Handler output is passed through to the process's stdout and stderr.
func NewDispatcher(builder *command.SafeBuilder, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		builder: builder,
		logger:  logger,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithOutput redirects handler output.
func (d *Dispatcher) WithOutput(stdout, stderr io.Writer) *Dispatcher {
	d.stdout = stdout
	d.stderr = stderr
	return d
}

// Outcome records one handler run.
type Outcome struct {
	Command  string
	Duration time.Duration
	Err      error
}

// Dispatch runs handlers in order and stops at the first failure, whose
// error it returns. Outcomes cover every handler that was started.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *Invocation, handlers []config.HandlerConfig) ([]Outcome, error) {
	log := d.logger.WithFields(logrus.Fields{
		"hook":       inv.Hook().External(),
		"invocation": inv.ID,
	})
	if len(handlers) == 0 {
		log.Debug("No handlers configured")
		return nil, nil
	}

	payload, err := inv.Payload()
	if err != nil {
		return nil, err
	}
	env := inv.Env()

	outcomes := make([]Outcome, 0, len(handlers))
	for i, h := range handlers {
		cmd, err := d.builder.Build(h.Command, h.Args...)
		if err != nil {
			return outcomes, err
		}
		timeout, err := h.TimeoutDuration()
		if err != nil {
			return outcomes, err
		}
		cmd.WithTimeout(timeout).
			WithDir(h.Dir).
			WithEnv(env...).
			WithStdin(bytes.NewReader(payload)).
			WithOutput(d.stdout, d.stderr)

		hlog := log.WithFields(logrus.Fields{"handler": i, "command": cmd.String()})
		hlog.Debug("Running handler")

		start := time.Now()
		err = cmd.Run(ctx)
		outcome := Outcome{Command: cmd.String(), Duration: time.Since(start), Err: err}
		outcomes = append(outcomes, outcome)

		if err != nil {
			hlog.WithError(err).WithField("duration", outcome.Duration).Error("Handler failed")
			return outcomes, err
		}
		hlog.WithField("duration", outcome.Duration).Info("Handler finished")
	}
	return outcomes, nil
}
