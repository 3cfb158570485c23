// Package form validates incoming field values and binds them onto typed
// destinations.
//
// A Form is built from a list of Fields, each of which knows its name, its
// validation rules and where to store its decoded value. Two flavours
// exist:
//
//   - New builds a full form, used on create: every field is validated and
//     an absent field counts as empty.
//   - NewPartial builds a partial form, used on PATCH: only the fields
//     present in the request are validated and bound. Absent fields are
//     left out entirely, so their destinations stay Unset and the target
//     object keeps its current value.
//
// Destinations are Opt values, so callers can tell "not supplied" apart
// from "supplied as the zero value".
package form

import (
	"net/url"

	"github.com/sakif/esther/internal/apperror"
)

// Values is the raw name -> value mapping taken from a request body.
type Values map[string]string

// FromURLValues flattens decoded form data, keeping the first value of
// each key.
func FromURLValues(v url.Values) Values {
	out := make(Values, len(v))
	for k, vs := range v {
		if len(vs) > 0 {
			out[k] = vs[0]
		} else {
			out[k] = ""
		}
	}
	return out
}

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Add appends a message for a field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Form validates a set of values against a set of fields.
type Form struct {
	fields []Field
	values Values
	errors Errors
}

// New builds a full form. Every field is validated on Validate; fields
// missing from values are validated as empty strings.
func New(fields []Field, values Values) *Form {
	if values == nil {
		values = Values{}
	}
	return &Form{
		fields: fields,
		values: values,
		errors: Errors{},
	}
}

// NewPartial builds a form restricted to the fields present in values.
//
// It fails with apperror.ErrEmptyBody when values is empty and with
// apperror.ErrInvalidParameters when values names a field the form does
// not know. Both checks run before any field is validated.
func NewPartial(fields []Field, values Values) (*Form, error) {
	if len(values) == 0 {
		return nil, apperror.EmptyBody()
	}

	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		known[f.Name()] = f
	}
	for name := range values {
		if _, ok := known[name]; !ok {
			return nil, apperror.InvalidParameters()
		}
	}

	present := make([]Field, 0, len(values))
	for _, f := range fields {
		if _, ok := values[f.Name()]; ok {
			present = append(present, f)
		}
	}

	return &Form{
		fields: present,
		values: values,
		errors: Errors{},
	}, nil
}

// Validate runs every field of the form and binds the values that pass.
// It reports whether the form is free of errors, including errors added
// with AddError before the call.
func (f *Form) Validate() bool {
	for _, field := range f.fields {
		if msgs := field.bind(f.values[field.Name()]); len(msgs) > 0 {
			for _, m := range msgs {
				f.errors.Add(field.Name(), m)
			}
		}
	}
	return len(f.errors) == 0
}

// Valid reports whether the named field has no errors.
func (f *Form) Valid(name string) bool {
	return len(f.errors[name]) == 0
}

// AddError records a message for a field. Used for checks that need
// collaborators the form does not have, such as uniqueness lookups.
func (f *Form) AddError(field, message string) {
	f.errors.Add(field, message)
}

// Errors returns the messages collected so far.
func (f *Form) Errors() Errors {
	return f.errors
}

// Err returns nil for a valid form and an apperror.ErrValidation carrying
// every field message otherwise.
func (f *Form) Err() error {
	if len(f.errors) == 0 {
		return nil
	}
	return apperror.Invalid(f.errors)
}
