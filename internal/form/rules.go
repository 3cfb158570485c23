package form

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Rule checks a trimmed raw value and returns an error whose text is the
// message shown to the client.
type Rule func(value string) error

// validate is safe for concurrent use and caches parsed tags.
var validate = validator.New()

var (
	errRequired     = errors.New("This field is required.")
	errInvalidEmail = errors.New("Invalid email address.")
)

// Required rejects empty values.
func Required() Rule {
	return func(value string) error {
		if validate.Var(value, "required") != nil {
			return errRequired
		}
		return nil
	}
}

// MaxLength rejects values longer than n characters.
func MaxLength(n int) Rule {
	tag := "max=" + strconv.Itoa(n)
	return func(value string) error {
		if validate.Var(value, tag) != nil {
			return fmt.Errorf("Field cannot be longer than %d characters.", n)
		}
		return nil
	}
}

// Email rejects values that are not a bare e-mail address. Empty values
// pass; combine with Required when the field is mandatory.
func Email() Rule {
	return func(value string) error {
		if validate.Var(value, "omitempty,email") != nil {
			return errInvalidEmail
		}
		return nil
	}
}
