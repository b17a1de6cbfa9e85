package parser

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/hooks"
)

// Options is the result of parsing a hook's arguments. Keys are flag names
// without their leading dashes. Ordinary and choice flags that were not
// passed are absent; optional-value flags are always present.
type Options struct {
	hook      hooks.Hook
	order     []string
	values    map[string]string
	lists     map[string][]string
	approvals []string
}

// Approval is one approval category score reported by Gerrit.
type Approval struct {
	Label    string `json:"label" yaml:"label"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	OldValue string `json:"old_value,omitempty" yaml:"old_value,omitempty"`
}

func newOptions(h hooks.Hook, specs []flags.Spec, approvals []string) *Options {
	order := make([]string, 0, len(specs))
	for _, s := range specs {
		order = append(order, s.Key())
	}
	return &Options{
		hook:      h,
		order:     order,
		values:    make(map[string]string),
		lists:     make(map[string][]string),
		approvals: approvals,
	}
}

// Hook returns the hook the options were parsed for.
func (o *Options) Hook() hooks.Hook {
	return o.hook
}

// Get returns the value of a single-valued flag.
func (o *Options) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// String returns the value of a single-valued flag, or "" if it is absent.
func (o *Options) String(key string) string {
	return o.values[key]
}

// Strings returns the values of a repeatable flag in the order given.
// A single-valued flag yields a one-element slice.
func (o *Options) Strings(key string) []string {
	if l, ok := o.lists[key]; ok {
		return slices.Clone(l)
	}
	if v, ok := o.values[key]; ok {
		return []string{v}
	}
	return nil
}

// Has reports whether key is present in the result.
func (o *Options) Has(key string) bool {
	if _, ok := o.values[key]; ok {
		return true
	}
	_, ok := o.lists[key]
	return ok
}

// Keys returns the present keys in flag definition order.
func (o *Options) Keys() []string {
	var keys []string
	for _, k := range o.order {
		if o.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Map returns the result as a plain map of string or []string values.
func (o *Options) Map() map[string]any {
	m := make(map[string]any, len(o.values)+len(o.lists))
	for k, v := range o.values {
		m[k] = v
	}
	for k, l := range o.lists {
		m[k] = slices.Clone(l)
	}
	return m
}

// MarshalJSON encodes the result as a flat JSON object.
func (o *Options) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Map())
}

// MarshalYAML encodes the result as a flat YAML mapping.
func (o *Options) MarshalYAML() (interface{}, error) {
	return o.Map(), nil
}

// Approvals returns the approval scores present in the result. A label is
// reported when the hook defines both "--<label>" and "--<label>-oldValue"
// or when it is a registered approval category, and at least one of the
// two values was passed.
func (o *Options) Approvals() []Approval {
	var out []Approval
	for _, k := range o.order {
		if strings.HasSuffix(k, flags.OldValueSuffix) {
			continue
		}
		if !slices.Contains(o.order, k+flags.OldValueSuffix) && !slices.Contains(o.approvals, k) {
			continue
		}
		value, hasValue := o.values[k]
		old, hasOld := o.values[k+flags.OldValueSuffix]
		if !hasValue && !hasOld {
			continue
		}
		out = append(out, Approval{Label: k, Value: value, OldValue: old})
	}
	return out
}

// Env renders the result as GERRIT_<KEY>=value pairs, with keys upper-cased
// and dashes replaced by underscores. Repeatable values are joined with newlines.
func (o *Options) Env() []string {
	env := make([]string, 0, len(o.values)+len(o.lists))
	for _, k := range o.Keys() {
		name := flags.EnvName(k)
		if l, ok := o.lists[k]; ok {
			env = append(env, name+"="+strings.Join(l, "\n"))
			continue
		}
		env = append(env, name+"="+o.values[k])
	}
	return env
}
