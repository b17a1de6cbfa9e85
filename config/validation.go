package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/moby/patternmatcher"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.ApprovalCategories))
	for _, label := range c.ApprovalCategories {
		if err := flags.ValidateLabel(label); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("invalid approval category '%s'", label)).
				WithDetail("label", label)
		}
		if seen[label] {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("approval category '%s' listed twice", label)).
				WithDetail("label", label)
		}
		seen[label] = true
	}

	for key, handlers := range c.Handlers {
		if _, ok := hooks.Lookup(key); !ok {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("handlers: unknown hook '%s'", key)).
				WithDetail("hook", key).
				WithDetail("known", hooks.Names())
		}
		for i, h := range handlers {
			if err := validateHandler(h); err != nil {
				return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("invalid handler %d for '%s'", i, key)).
					WithDetail("hook", key)
			}
		}
	}

	if c.Install != nil {
		if err := validatePatterns("install.only", c.Install.Only); err != nil {
			return err
		}
		if err := validatePatterns("install.exclude", c.Install.Exclude); err != nil {
			return err
		}
	}

	return nil
}

func validateHandler(h HandlerConfig) error {
	if strings.TrimSpace(h.Command) == "" {
		return errors.New(errors.ErrCodeConfigValidation, "handler command cannot be empty")
	}
	if slices.Contains(h.Args, "") {
		return errors.New(errors.ErrCodeConfigValidation, "handler arguments cannot be empty strings")
	}
	d, err := h.TimeoutDuration()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "handler timeout is not a duration").
			WithDetail("timeout", h.Timeout)
	}
	if d <= 0 || d > MaxHandlerTimeout {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("handler timeout must be between 0 and %s", MaxHandlerTimeout)).
			WithDetail("timeout", h.Timeout)
	}
	return nil
}

func validatePatterns(field string, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	if _, err := patternmatcher.New(patterns); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("%s contains an invalid pattern", field)).
			WithDetail("patterns", patterns)
	}
	return nil
}

// ApplyTo registers every configured approval category on reg. It must run
// before any parser is built from reg. Labels reg already knows are skipped.
func (c *Config) ApplyTo(reg *flags.Registry) error {
	for _, label := range c.ApprovalCategories {
		if slices.Contains(reg.ApprovalCategories(), label) {
			continue
		}
		if err := reg.AddApprovalCategory(label); err != nil {
			return err
		}
	}
	return nil
}
