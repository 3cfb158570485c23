package form

import (
	"errors"
	"strings"
	"time"
)

// Opt is a field update: either Unset or Set to a value.
type Opt[T any] struct {
	value T
	set   bool
}

// Set returns an Opt holding v.
func Set[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the Opt holds a value.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Value returns the held value, or the zero value when Unset.
func (o Opt[T]) Value() T {
	return o.value
}

// Field is one named input of a form.
type Field interface {
	Name() string
	bind(raw string) []string
}

type field[T any] struct {
	name  string
	dst   *Opt[T]
	rules []Rule
	parse func(string) (T, error)
}

func (f *field[T]) Name() string { return f.name }

// bind trims the raw value, runs the rules in order (stopping at the first
// failure), then decodes into the destination.
func (f *field[T]) bind(raw string) []string {
	raw = strings.TrimSpace(raw)
	for _, rule := range f.rules {
		if err := rule(raw); err != nil {
			return []string{err.Error()}
		}
	}
	v, err := f.parse(raw)
	if err != nil {
		return []string{err.Error()}
	}
	*f.dst = Set(v)
	return nil
}

// Text is a string field.
func Text(name string, dst *Opt[string], rules ...Rule) Field {
	return &field[string]{
		name:  name,
		dst:   dst,
		rules: rules,
		parse: func(s string) (string, error) { return s, nil },
	}
}

// OptionalText is a nullable string field; an empty value binds nil.
func OptionalText(name string, dst *Opt[*string], rules ...Rule) Field {
	return &field[*string]{
		name:  name,
		dst:   dst,
		rules: rules,
		parse: func(s string) (*string, error) {
			if s == "" {
				return nil, nil
			}
			return &s, nil
		},
	}
}

var errInvalidBool = errors.New("Not a valid boolean value.")

// Bool is a boolean field. An empty value binds false.
func Bool(name string, dst *Opt[bool], rules ...Rule) Field {
	return &field[bool]{
		name:  name,
		dst:   dst,
		rules: rules,
		parse: ParseBool,
	}
}

// ParseBool accepts the spellings HTML forms and JSON clients send.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "f", "false", "n", "no", "off":
		return false, nil
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	}
	return false, errInvalidBool
}

// DateTime is a nullable timestamp field. Naive values are read in loc;
// every bound value is in UTC. An empty value binds nil.
func DateTime(name string, dst *Opt[*time.Time], loc *time.Location, rules ...Rule) Field {
	return &field[*time.Time]{
		name:  name,
		dst:   dst,
		rules: rules,
		parse: func(s string) (*time.Time, error) {
			if s == "" {
				return nil, nil
			}
			t, err := ParseDateTime(s, loc)
			if err != nil {
				return nil, err
			}
			return &t, nil
		},
	}
}
