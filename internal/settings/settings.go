// Package settings resolves per-rule tunables. A rule declares an immutable
// Schema; Resolve combines it with user overrides from the policy file and
// always produces a complete set of typed values. Invalid overrides never
// fail a scan: they fall back to the default and are logged at debug level.
package settings

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/spf13/cast"
)

// Type is the concrete type of an option value.
type Type string

const (
	Bool   Type = "bool"
	Int    Type = "int"
	String Type = "string"
)

// Range bounds an Int option, inclusive on both ends.
type Range struct {
	Min int
	Max int
}

// Option describes one tunable.
type Option struct {
	Description string
	Type        Type

	// Regex, when set, must match the override's string form.
	Regex string

	// Pattern marks a String option whose value is itself a regular
	// expression; values that do not compile are rejected.
	Pattern bool

	// Range, when set, bounds Int options.
	Range *Range

	Default any
}

// Schema maps option names to their descriptions.
type Schema map[string]Option

// Names returns the option names in sorted order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every option's default satisfies its own constraints.
func (s Schema) Validate() error {
	for _, name := range s.Names() {
		opt := s[name]
		if _, err := opt.coerce(opt.Default); err != nil {
			return fmt.Errorf("setting %q: invalid default: %w", name, err)
		}
	}
	return nil
}

// Check reports whether v is an acceptable override for the named option.
func (s Schema) Check(name string, v any) error {
	opt, ok := s[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	if _, err := opt.coerce(v); err != nil {
		return fmt.Errorf("setting %q: %w", name, err)
	}
	return nil
}

// coerce converts v into the option's type and checks its constraints.
func (o Option) coerce(v any) (any, error) {
	if o.Regex != "" {
		raw, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(o.Regex)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", o.Regex, err)
		}
		if !re.MatchString(raw) {
			return nil, fmt.Errorf("value %q does not match %s", raw, o.Regex)
		}
	}

	switch o.Type {
	case Bool:
		return cast.ToBoolE(v)
	case Int:
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil, err
		}
		if o.Range != nil && (n < o.Range.Min || n > o.Range.Max) {
			return nil, fmt.Errorf("value %d outside [%d, %d]", n, o.Range.Min, o.Range.Max)
		}
		return n, nil
	case String:
		str, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		if o.Pattern {
			if _, err := regexp.Compile(str); err != nil {
				return nil, fmt.Errorf("value %q is not a valid regular expression: %w", str, err)
			}
		}
		return str, nil
	default:
		return nil, fmt.Errorf("unknown option type %q", o.Type)
	}
}

// Resolved holds one concrete value for every option of a schema.
type Resolved map[string]any

// Bool returns the named option as a bool.
func (r Resolved) Bool(name string) bool {
	return cast.ToBool(r[name])
}

// Int returns the named option as an int.
func (r Resolved) Int(name string) int {
	return cast.ToInt(r[name])
}

// String returns the named option as a string.
func (r Resolved) String(name string) string {
	return cast.ToString(r[name])
}

// Resolve returns the effective value of every option in schema. An override
// is used when present and valid for its option; otherwise the default is
// used. Overrides naming unknown options are ignored.
func Resolve(schema Schema, overrides map[string]any) Resolved {
	resolved := make(Resolved, len(schema))
	for name, opt := range schema {
		resolved[name] = opt.Default
		raw, ok := overrides[name]
		if !ok {
			continue
		}
		v, err := opt.coerce(raw)
		if err != nil {
			slog.Debug("ignoring invalid setting override",
				"setting", name,
				"value", fmt.Sprint(raw),
				"error", err.Error(),
			)
			continue
		}
		resolved[name] = v
	}
	return resolved
}
