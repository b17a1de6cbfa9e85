// Package flags holds the per-hook flag definitions.
package flags

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/hooks"
)

// OldValueSuffix is appended to an approval label to name the flag carrying
// the previous score.
const OldValueSuffix = "-oldValue"

var labelRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ReservedEnv lists the variables handlers receive besides the parsed
// values. No flag may export under these names.
var ReservedEnv = []string{"GERRIT_HOOK", "GERRIT_HOOK_INVOCATION"}

// Registry maps each hook to its ordered flag list.
//
// A Registry is read-only except through Extend and AddApprovalCategory.
// It has no locking: register approval categories once, before parsers are
// built or the registry is shared between goroutines. Parsers snapshot the
// flag list when they are built, so later extensions do not reach them.
type Registry struct {
	flags     map[hooks.Hook][]Spec
	approvals []string
}

// NewRegistry returns a registry holding the default flag definitions.
func NewRegistry() *Registry {
	return newRegistry(defaultFlags(), DefaultApprovalCategories)
}

func newRegistry(defs map[hooks.Hook][]Spec, approvals []string) *Registry {
	return &Registry{
		flags:     defs,
		approvals: slices.Clone(approvals),
	}
}

// Lookup returns a copy of the ordered flag list for h.
func (r *Registry) Lookup(h hooks.Hook) ([]Spec, error) {
	specs, ok := r.flags[h]
	if !ok {
		return nil, errors.UnknownFlagKey(string(h))
	}
	out := make([]Spec, len(specs))
	for i, s := range specs {
		out[i] = s.clone()
	}
	return out, nil
}

// Hooks returns the hooks that have flag definitions, in catalog order
// followed by any hooks unknown to the catalog.
func (r *Registry) Hooks() []hooks.Hook {
	var out []hooks.Hook
	for h := range hooks.Seq() {
		if _, ok := r.flags[h]; ok {
			out = append(out, h)
		}
	}
	var extra []hooks.Hook
	for h := range r.flags {
		if !h.Known() {
			extra = append(extra, h)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// Extend appends a "--<label> <placeholder>" flag and its
// "--<label>-oldValue <placeholder>" companion to h's flag list.
// Only comment-added accepts custom approval categories.
func (r *Registry) Extend(h hooks.Hook, label, placeholder string) error {
	if h != hooks.CommentAdded {
		return errors.UnsupportedExtension(string(h))
	}
	if err := ValidateLabel(label); err != nil {
		return err
	}
	specs, ok := r.flags[h]
	if !ok {
		return errors.UnknownFlagKey(string(h))
	}

	added := []Spec{
		flag("--"+label, placeholder),
		flag("--"+label+OldValueSuffix, placeholder),
	}
	for _, a := range added {
		if indexOf(specs, a.Name) >= 0 {
			return errors.DuplicateFlag(string(h), a.Name)
		}
		if err := checkEnvName(h, specs, a); err != nil {
			return err
		}
	}

	r.flags[h] = append(specs, added...)
	if !slices.Contains(r.approvals, label) {
		r.approvals = append(r.approvals, label)
	}
	return nil
}

// AddApprovalCategory registers a custom approval label on comment-added.
func (r *Registry) AddApprovalCategory(label string) error {
	return r.Extend(hooks.CommentAdded, label, "<score>")
}

// ApprovalCategories returns the known approval labels, defaults first.
func (r *Registry) ApprovalCategories() []string {
	return slices.Clone(r.approvals)
}

// Validate checks that the registry and the hook catalog agree and that
// every flag list is well formed.
func (r *Registry) Validate() error {
	for h := range hooks.Seq() {
		if _, ok := r.flags[h]; !ok {
			return errors.UnknownFlagKey(string(h))
		}
	}
	for h, specs := range r.flags {
		if !h.Known() {
			return errors.New(errors.ErrCodeInternal, fmt.Sprintf("flags defined for unknown hook '%s'", h)).
				WithDetail("hook", string(h))
		}
		if len(specs) == 0 {
			return errors.New(errors.ErrCodeInternal, fmt.Sprintf("hook '%s' has no flags", h)).
				WithDetail("hook", string(h))
		}
		seen := make(map[string]bool, len(specs))
		for i, s := range specs {
			if !strings.HasPrefix(s.Name, "--") || s.Key() == "" {
				return errors.New(errors.ErrCodeInternal, fmt.Sprintf("malformed flag name %q", s.Name)).
					WithDetail("hook", string(h))
			}
			if seen[s.Name] {
				return errors.DuplicateFlag(string(h), s.Name)
			}
			seen[s.Name] = true
			if err := checkEnvName(h, specs[:i], s); err != nil {
				return err
			}
			if s.Kind == Choice && len(s.Choices) == 0 {
				return errors.New(errors.ErrCodeInternal, fmt.Sprintf("choice flag %s has no choices", s.Name)).
					WithDetail("hook", string(h))
			}
		}
	}
	return nil
}

// ValidateLabel checks that label can be used as an approval category flag.
func ValidateLabel(label string) error {
	if !labelRegex.MatchString(label) {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid approval category %q: must start with a letter or digit and contain only letters, digits, '-', '_' or '.'", label)).
			WithDetail("label", label)
	}
	if strings.HasSuffix(label, OldValueSuffix) {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid approval category %q: must not end in %s", label, OldValueSuffix)).
			WithDetail("label", label)
	}
	return nil
}

// checkEnvName fails when s would be exported under the same variable as
// one of specs or a reserved name, e.g. "--Code_Review" next to "--Code-Review".
func checkEnvName(h hooks.Hook, specs []Spec, s Spec) error {
	env := s.EnvName()
	if slices.Contains(ReservedEnv, env) {
		return errors.New(errors.ErrCodeDuplicateFlag,
			fmt.Sprintf("flag %s would be exported as the reserved variable %s", s.Name, env)).
			WithDetail("hook", string(h)).
			WithDetail("flag", s.Name).
			WithDetail("env", env)
	}
	for _, other := range specs {
		if other.Name != s.Name && other.EnvName() == env {
			return errors.New(errors.ErrCodeDuplicateFlag,
				fmt.Sprintf("flag %s collides with %s as %s for hook '%s'", s.Name, other.Name, env, h)).
				WithDetail("hook", string(h)).
				WithDetail("flag", s.Name).
				WithDetail("env", env)
		}
	}
	return nil
}

func indexOf(specs []Spec, name string) int {
	return slices.IndexFunc(specs, func(s Spec) bool { return s.Name == name })
}
